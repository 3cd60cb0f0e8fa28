package service

import (
	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/engine"
	"github.com/gmtavares/stockex/internal/store"
)

// PlaceOrderRequest represents the input for order submission.
type PlaceOrderRequest struct {
	AccountID    int64
	InstrumentID string
	Side         domain.OrderSide
	Price        float64 // limit price in dollars
	Quantity     int64
}

// OrderService handles order submission and history queries.
type OrderService struct {
	matcher    *engine.Matcher
	ledger     *store.LedgerStore
	orderStore *store.OrderStore
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(matcher *engine.Matcher, ledger *store.LedgerStore, orderStore *store.OrderStore) *OrderService {
	return &OrderService{
		matcher:    matcher,
		ledger:     ledger,
		orderStore: orderStore,
	}
}

// PlaceOrder validates the request shape, converts dollars to cents, and
// hands the order to the matching engine. The returned trades are the
// executions the submission itself caused, in execution order.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*domain.Order, []*domain.Trade, error) {
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if !tickerRegex.MatchString(req.InstrumentID) {
		return nil, nil, &domain.ValidationError{
			Message: "instrument_id must match ^[A-Z]{1,10}$",
		}
	}
	if req.Price <= 0 {
		return nil, nil, &domain.ValidationError{
			Message: "price must be > 0",
		}
	}
	priceCents, err := domain.DollarsToCents(req.Price)
	if err != nil {
		return nil, nil, &domain.ValidationError{
			Message: "price must have at most 2 decimal places",
		}
	}
	if req.Quantity <= 0 {
		return nil, nil, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}

	return s.matcher.PlaceOrder(req.AccountID, req.InstrumentID, req.Side, priceCents, req.Quantity)
}

// GetOrder retrieves a single order from the history.
func (s *OrderService) GetOrder(orderID int64) (*domain.Order, error) {
	return s.orderStore.Get(orderID)
}

// GetOrderHistory returns every order the account ever submitted, any
// status, in submission order.
func (s *OrderService) GetOrderHistory(accountID int64) ([]*domain.Order, error) {
	if !s.ledger.Exists(accountID) {
		return nil, domain.ErrAccountNotFound
	}
	return s.orderStore.ListByAccount(accountID), nil
}
