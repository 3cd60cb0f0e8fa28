package store

import (
	"sync"
	"time"

	"github.com/gmtavares/stockex/internal/domain"
)

// OrderStore is the append-only order history: every order ever
// submitted, with a primary index by order id and a secondary index by
// account. Order IDs are assigned sequentially at creation and records
// are never deleted.
type OrderStore struct {
	mu            sync.RWMutex
	orders        map[int64]*domain.Order
	accountOrders map[int64][]*domain.Order // account id → orders, submission order
	nextID        int64
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:        make(map[int64]*domain.Order),
		accountOrders: make(map[int64][]*domain.Order),
	}
}

// Create records a newly submitted order with status pending_at_exchange,
// assigning the next sequential order id.
func (s *OrderStore) Create(accountID int64, instrumentID string, side domain.OrderSide, price, quantity int64) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	o := &domain.Order{
		ID:           s.nextID,
		AccountID:    accountID,
		InstrumentID: instrumentID,
		Side:         side,
		Price:        price,
		Quantity:     quantity,
		Status:       domain.OrderStatusPendingAtExchange,
		CreatedAt:    time.Now(),
	}
	s.orders[o.ID] = o
	s.accountOrders[accountID] = append(s.accountOrders[accountID], o)
	return o
}

// Get retrieves an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// MarkDone transitions the order to done. Done is terminal: it is set
// exactly once, when the order's resting quantity reaches zero.
func (s *OrderStore) MarkDone(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.OrderStatusDone
	return nil
}

// ListByAccount returns every order the account ever submitted, any
// status, in submission order. Returns an empty slice for an account
// with no orders.
func (s *OrderStore) ListByAccount(accountID int64) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.accountOrders[accountID]
	result := make([]*domain.Order, len(all))
	copy(result, all)
	return result
}
