package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/store"
)

// Matcher implements the continuous double auction over the per-
// instrument order books. Every submission validates and reserves
// against the ledger, rests on the book, and then crosses the book to
// exhaustion before control returns to the caller; there is no
// separate matching tick.
type Matcher struct {
	books       *BookManager
	ledger      *store.LedgerStore
	instruments *store.InstrumentStore
	orderStore  *store.OrderStore
	tradeStore  *store.TradeStore
}

// NewMatcher creates a new Matcher with the given dependencies.
func NewMatcher(
	books *BookManager,
	ledger *store.LedgerStore,
	instruments *store.InstrumentStore,
	orderStore *store.OrderStore,
	tradeStore *store.TradeStore,
) *Matcher {
	return &Matcher{
		books:       books,
		ledger:      ledger,
		instruments: instruments,
		orderStore:  orderStore,
		tradeStore:  tradeStore,
	}
}

// PlaceOrder processes a new limit order: it validates the submitter
// against the ledger, reserves funds (buy) or inventory (sell), appends
// the order to the history, rests it on the book, and runs the match
// loop until the spread no longer crosses.
//
// Validation failures are returned as typed errors with no state
// changed. A *domain.InconsistencyError from settlement aborts the pass
// and must be treated as fatal by the caller.
//
// The per-instrument write lock is held for the entire submit-and-match pass.
func (m *Matcher) PlaceOrder(accountID int64, instrumentID string, side domain.OrderSide, price, quantity int64) (*domain.Order, []*domain.Trade, error) {
	book := m.books.GetOrCreate(instrumentID)

	book.mu.Lock()
	defer book.mu.Unlock()

	if !m.ledger.Exists(accountID) {
		return nil, nil, domain.ErrAccountNotFound
	}

	// Coarse existence/liquidity check against the listed supply, not a
	// per-order cap.
	inst, err := m.instruments.Get(instrumentID)
	if err != nil || inst.AvailableSupply < quantity {
		return nil, nil, domain.ErrInstrumentUnavailable
	}

	if side == domain.OrderSideBuy {
		if err := m.ledger.PlaceHold(accountID, price*quantity); err != nil {
			return nil, nil, err
		}
	} else {
		if err := m.ledger.LockInventory(accountID, instrumentID, quantity); err != nil {
			return nil, nil, err
		}
	}

	order := m.orderStore.Create(accountID, instrumentID, side, price, quantity)

	book.Insert(&Entry{
		OrderID:   order.ID,
		AccountID: accountID,
		Side:      side,
		Price:     price,
		Remaining: quantity,
	})

	trades, err := m.matchToExhaustion(book, instrumentID)
	return order, trades, err
}

// matchToExhaustion repeatedly pairs the best bid against the best ask
// while the spread crosses. The execution price is the ask side's price,
// and the trade quantity is the smaller of the two remainders. Each
// match settles atomically through the ledger before the book is
// reduced; a settlement failure stops the loop and propagates.
func (m *Matcher) matchToExhaustion(book *OrderBook, instrumentID string) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for {
		bid, ok := book.BestBid()
		if !ok {
			break
		}
		ask, ok := book.BestAsk()
		if !ok {
			break
		}
		if bid.Price < ask.Price {
			// No crossing spread. Terminal, not an error.
			break
		}

		fillQty := bid.Remaining
		if ask.Remaining < fillQty {
			fillQty = ask.Remaining
		}
		executionPrice := ask.Price

		if err := m.ledger.Settle(store.Settlement{
			BuyerID:      bid.AccountID,
			SellerID:     ask.AccountID,
			InstrumentID: instrumentID,
			Quantity:     fillQty,
			Price:        executionPrice,
		}); err != nil {
			return trades, err
		}

		trade := &domain.Trade{
			TradeID:      uuid.New().String(),
			InstrumentID: instrumentID,
			BuyOrderID:   bid.OrderID,
			SellOrderID:  ask.OrderID,
			Price:        executionPrice,
			Quantity:     fillQty,
			ExecutedAt:   time.Now(),
		}
		m.tradeStore.Append(instrumentID, trade)
		trades = append(trades, trade)

		if book.ReduceOrRemove(bid, fillQty) {
			_ = m.orderStore.MarkDone(bid.OrderID)
		}
		if book.ReduceOrRemove(ask, fillQty) {
			_ = m.orderStore.MarkDone(ask.OrderID)
		}
	}

	return trades, nil
}
