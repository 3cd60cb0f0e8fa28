package store

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gmtavares/stockex/internal/domain"
)

// AccountSnapshot is a point-in-time copy of an account's cash state.
type AccountSnapshot struct {
	AccountID        int64
	Balance          int64
	HeldAmount       int64
	AvailableBalance int64
}

// PositionSnapshot is a point-in-time copy of a single portfolio position.
type PositionSnapshot struct {
	InstrumentID      string
	Quantity          int64
	LockedInTrade     int64
	AvailableQuantity int64
	AvgCost           decimal.Decimal // cents
}

// LedgerStore owns the canonical account and portfolio records. A single
// store-wide lock makes every exported operation, including the whole
// multi-step Settle, atomic with respect to concurrent reads, so no
// caller can ever observe a half-applied transfer.
//
// The adjust operations mutate exactly one account each and carry the
// invariant checks; composite flows (hold placement, inventory locking,
// settlement) are built from the same locked helpers.
type LedgerStore struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	nextID   int64
}

// NewLedgerStore creates an empty LedgerStore.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[int64]*domain.Account),
	}
}

// CreateAccount registers a new account with the given starting balance
// in cents and an empty portfolio. Account IDs are assigned sequentially.
// It returns domain.ErrInvalidAmount for a negative starting balance.
func (s *LedgerStore) CreateAccount(initialBalance int64) (*domain.Account, error) {
	if initialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	acc := &domain.Account{
		ID:        s.nextID,
		Balance:   initialBalance,
		Positions: make(map[string]*domain.Position),
		CreatedAt: time.Now(),
	}
	s.accounts[acc.ID] = acc
	return acc, nil
}

// Exists returns true if an account with the given ID exists.
func (s *LedgerStore) Exists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// AdjustBalance applies balance += delta. It performs no bound check:
// callers (hold placement, settlement, the balance service) are
// responsible for the resulting state being valid.
func (s *LedgerStore) AdjustBalance(id, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance += delta
	return nil
}

// UpdateBalance applies a deposit or withdrawal. Unlike AdjustBalance it
// refuses to take the balance below the held amount, since held cash is
// already committed to open buy orders.
func (s *LedgerStore) UpdateBalance(id, delta int64) (AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return AccountSnapshot{}, domain.ErrAccountNotFound
	}
	if acc.Balance+delta < acc.HeldAmount {
		return AccountSnapshot{}, domain.ErrInsufficientBalance
	}
	acc.Balance += delta
	return AccountSnapshot{
		AccountID:        acc.ID,
		Balance:          acc.Balance,
		HeldAmount:       acc.HeldAmount,
		AvailableBalance: acc.AvailableBalance(),
	}, nil
}

// AdjustHold applies heldAmount += delta. A resulting negative hold means
// settlement released more than was ever held, which is fatal.
func (s *LedgerStore) AdjustHold(id, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	return adjustHoldLocked(acc, delta)
}

func adjustHoldLocked(acc *domain.Account, delta int64) error {
	if acc.HeldAmount+delta < 0 {
		return domain.Inconsistencyf(acc.ID, "hold %d + delta %d is negative", acc.HeldAmount, delta)
	}
	acc.HeldAmount += delta
	return nil
}

// AvailableBalance returns balance minus heldAmount for the account.
func (s *LedgerStore) AvailableBalance(id int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	return acc.AvailableBalance(), nil
}

// Balance returns a snapshot of the account's cash state.
func (s *LedgerStore) Balance(id int64) (AccountSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return AccountSnapshot{}, domain.ErrAccountNotFound
	}
	return AccountSnapshot{
		AccountID:        acc.ID,
		Balance:          acc.Balance,
		HeldAmount:       acc.HeldAmount,
		AvailableBalance: acc.AvailableBalance(),
	}, nil
}

// AdjustPositionQuantity applies quantity += delta to the account's
// position in the instrument. Reducing a position below zero, or below
// its locked quantity, is a bookkeeping bug and fails fatally; the
// quantity is never wrapped or clamped.
func (s *LedgerStore) AdjustPositionQuantity(id int64, instrumentID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	pos, ok := acc.Positions[instrumentID]
	if !ok {
		return domain.ErrPositionNotFound
	}
	return adjustPositionQuantityLocked(acc, pos, instrumentID, delta)
}

func adjustPositionQuantityLocked(acc *domain.Account, pos *domain.Position, instrumentID string, delta int64) error {
	next := pos.Quantity + delta
	if next < 0 {
		return domain.Inconsistencyf(acc.ID, "position %s quantity %d + delta %d is negative", instrumentID, pos.Quantity, delta)
	}
	if next < pos.LockedInTrade {
		return domain.Inconsistencyf(acc.ID, "position %s quantity %d would drop below locked %d", instrumentID, next, pos.LockedInTrade)
	}
	pos.Quantity = next
	return nil
}

// AdjustPositionLock applies lockedInTrade += delta. The lock must stay
// within [0, quantity] at every step.
func (s *LedgerStore) AdjustPositionLock(id int64, instrumentID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	pos, ok := acc.Positions[instrumentID]
	if !ok {
		return domain.ErrPositionNotFound
	}
	return adjustPositionLockLocked(acc, pos, instrumentID, delta)
}

func adjustPositionLockLocked(acc *domain.Account, pos *domain.Position, instrumentID string, delta int64) error {
	next := pos.LockedInTrade + delta
	if next < 0 {
		return domain.Inconsistencyf(acc.ID, "position %s lock %d + delta %d is negative", instrumentID, pos.LockedInTrade, delta)
	}
	if next > pos.Quantity {
		return domain.Inconsistencyf(acc.ID, "position %s lock %d would exceed quantity %d", instrumentID, next, pos.Quantity)
	}
	pos.LockedInTrade = next
	return nil
}

// UpsertPositionOnAcquire merges an acquired lot into the account's
// position using the quantity-weighted average price:
//
//	newAvg = (oldAvg*oldQty + price*qty) / (oldQty + qty)
//
// If no position exists one is created with lockedInTrade = 0.
func (s *LedgerStore) UpsertPositionOnAcquire(id int64, instrumentID string, quantity, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	upsertPositionOnAcquireLocked(acc, instrumentID, quantity, price)
	return nil
}

func upsertPositionOnAcquireLocked(acc *domain.Account, instrumentID string, quantity, price int64) {
	pos, ok := acc.Positions[instrumentID]
	if !ok {
		acc.Positions[instrumentID] = &domain.Position{
			Quantity: quantity,
			AvgCost:  decimal.NewFromInt(price),
		}
		return
	}

	oldQty := decimal.NewFromInt(pos.Quantity)
	newQty := decimal.NewFromInt(quantity)
	lotCost := decimal.NewFromInt(price).Mul(newQty)
	totalQty := oldQty.Add(newQty)

	pos.AvgCost = pos.AvgCost.Mul(oldQty).Add(lotCost).Div(totalQty)
	pos.Quantity += quantity
}

// PlaceHold atomically checks the available balance and reserves the
// given amount against it. It returns domain.ErrInsufficientBalance when
// the unheld balance does not cover the amount, leaving state unchanged.
func (s *LedgerStore) PlaceHold(id, amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.AvailableBalance() < amount {
		return domain.ErrInsufficientBalance
	}
	return adjustHoldLocked(acc, amount)
}

// LockInventory atomically checks the sellable quantity and reserves it
// against an open sell order. It returns domain.ErrPortfolioNotFound when
// the account holds no positions at all, and domain.ErrInsufficientStock
// when the position is absent or its unlocked quantity is too small.
func (s *LedgerStore) LockInventory(id int64, instrumentID string, quantity int64) error {
	if quantity < 0 {
		return domain.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if len(acc.Positions) == 0 {
		return domain.ErrPortfolioNotFound
	}
	pos, ok := acc.Positions[instrumentID]
	if !ok || pos.AvailableQuantity() < quantity {
		return domain.ErrInsufficientStock
	}
	return adjustPositionLockLocked(acc, pos, instrumentID, quantity)
}

// Portfolio returns a snapshot of the account's positions, sorted by
// instrument for stable output. It returns domain.ErrPortfolioNotFound
// if the account does not exist.
func (s *LedgerStore) Portfolio(id int64) ([]PositionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}

	result := make([]PositionSnapshot, 0, len(acc.Positions))
	for instrumentID, pos := range acc.Positions {
		result = append(result, PositionSnapshot{
			InstrumentID:      instrumentID,
			Quantity:          pos.Quantity,
			LockedInTrade:     pos.LockedInTrade,
			AvailableQuantity: pos.AvailableQuantity(),
			AvgCost:           pos.AvgCost,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].InstrumentID < result[j].InstrumentID
	})
	return result, nil
}

// CheckInvariants verifies the account's ledger invariants:
// 0 ≤ heldAmount ≤ balance, and 0 ≤ lockedInTrade ≤ quantity for every
// position. Any violation is returned as a fatal InconsistencyError.
func (s *LedgerStore) CheckInvariants(id int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	return checkInvariantsLocked(acc)
}

func checkInvariantsLocked(acc *domain.Account) error {
	if acc.HeldAmount < 0 {
		return domain.Inconsistencyf(acc.ID, "held amount %d is negative", acc.HeldAmount)
	}
	if acc.HeldAmount > acc.Balance {
		return domain.Inconsistencyf(acc.ID, "held amount %d exceeds balance %d", acc.HeldAmount, acc.Balance)
	}
	for instrumentID, pos := range acc.Positions {
		if pos.LockedInTrade < 0 {
			return domain.Inconsistencyf(acc.ID, "position %s lock %d is negative", instrumentID, pos.LockedInTrade)
		}
		if pos.LockedInTrade > pos.Quantity {
			return domain.Inconsistencyf(acc.ID, "position %s lock %d exceeds quantity %d", instrumentID, pos.LockedInTrade, pos.Quantity)
		}
	}
	return nil
}
