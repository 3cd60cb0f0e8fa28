package engine

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/store"
)

// propertyFixture seeds a small market: every account starts with the
// same cash and the same inventory, so the conserved totals are known.
type propertyFixture struct {
	*matcherFixture
	accountIDs  []int64
	totalCash   int64
	totalShares int64
}

func newPropertyFixture(t *rapid.T) *propertyFixture {
	const (
		accounts    = 3
		cashEach    = int64(1_000_000)
		sharesEach  = int64(100)
		seedCost    = int64(5000)
	)

	f := &propertyFixture{
		matcherFixture: &matcherFixture{
			ledger:      store.NewLedgerStore(),
			instruments: store.NewInstrumentStore(),
			orders:      store.NewOrderStore(),
			trades:      store.NewTradeStore(),
			books:       NewBookManager(),
		},
	}
	f.matcher = NewMatcher(f.books, f.ledger, f.instruments, f.orders, f.trades)

	if err := f.instruments.Create(&domain.Instrument{
		ID:              "TEST",
		Name:            "Test instrument",
		ReferencePrice:  seedCost,
		AvailableSupply: 10_000,
		CreatedAt:       time.Now(),
	}); err != nil {
		t.Fatalf("create instrument: %v", err)
	}

	for i := 0; i < accounts; i++ {
		acc, err := f.ledger.CreateAccount(cashEach)
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
		if err := f.ledger.UpsertPositionOnAcquire(acc.ID, "TEST", sharesEach, seedCost); err != nil {
			t.Fatalf("seed inventory: %v", err)
		}
		f.accountIDs = append(f.accountIDs, acc.ID)
		f.totalCash += cashEach
		f.totalShares += sharesEach
	}
	return f
}

func (f *propertyFixture) sumCashAndShares(t *rapid.T) (int64, int64) {
	var cash, shares int64
	for _, id := range f.accountIDs {
		snap, err := f.ledger.Balance(id)
		if err != nil {
			t.Fatalf("balance %d: %v", id, err)
		}
		cash += snap.Balance

		positions, err := f.ledger.Portfolio(id)
		if err != nil {
			t.Fatalf("portfolio %d: %v", id, err)
		}
		for _, p := range positions {
			shares += p.Quantity
		}
	}
	return cash, shares
}

func TestProperty_MatchingConservesCashAndShares(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newPropertyFixture(t)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			accountID := rapid.SampledFrom(f.accountIDs).Draw(t, "account")
			side := rapid.SampledFrom([]domain.OrderSide{
				domain.OrderSideBuy, domain.OrderSideSell,
			}).Draw(t, "side")
			price := rapid.Int64Range(4000, 6000).Draw(t, "price")
			quantity := rapid.Int64Range(1, 20).Draw(t, "quantity")

			_, _, err := f.matcher.PlaceOrder(accountID, "TEST", side, price, quantity)
			if err != nil {
				var inconsistency *domain.InconsistencyError
				if errors.As(err, &inconsistency) {
					t.Fatalf("ledger inconsistency: %v", err)
				}
				// Insufficient funds or stock is a legitimate rejection.
				continue
			}

			cash, shares := f.sumCashAndShares(t)
			if cash != f.totalCash {
				t.Fatalf("cash not conserved: sum %d, want %d", cash, f.totalCash)
			}
			if shares != f.totalShares {
				t.Fatalf("shares not conserved: sum %d, want %d", shares, f.totalShares)
			}

			for _, id := range f.accountIDs {
				if err := f.ledger.CheckInvariants(id); err != nil {
					t.Fatalf("account %d invariants: %v", id, err)
				}
			}

			book := f.books.GetOrCreate("TEST")
			bid, hasBid := book.BestBid()
			ask, hasAsk := book.BestAsk()
			if hasBid && hasAsk && bid.Price >= ask.Price {
				t.Fatalf("book left crossed: bid %d vs ask %d", bid.Price, ask.Price)
			}
		}
	})
}

func TestProperty_FilledQuantityNeverExceedsOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newPropertyFixture(t)

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			accountID := rapid.SampledFrom(f.accountIDs).Draw(t, "account")
			side := rapid.SampledFrom([]domain.OrderSide{
				domain.OrderSideBuy, domain.OrderSideSell,
			}).Draw(t, "side")
			price := rapid.Int64Range(4500, 5500).Draw(t, "price")
			quantity := rapid.Int64Range(1, 15).Draw(t, "quantity")

			order, trades, err := f.matcher.PlaceOrder(accountID, "TEST", side, price, quantity)
			if err != nil {
				continue
			}

			var filled int64
			for _, tr := range trades {
				if tr.BuyOrderID == order.ID || tr.SellOrderID == order.ID {
					filled += tr.Quantity
				}
			}
			if filled > order.Quantity {
				t.Fatalf("order %d for %d filled %d", order.ID, order.Quantity, filled)
			}
		}
	})
}
