package service

import (
	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/store"
)

// AccountService handles account creation and balance/portfolio queries.
type AccountService struct {
	ledger *store.LedgerStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(ledger *store.LedgerStore) *AccountService {
	return &AccountService{ledger: ledger}
}

// AddAccount creates an account with the given starting balance in
// dollars and provisions its empty portfolio. The new account's id is
// assigned sequentially by the ledger.
func (s *AccountService) AddAccount(initialBalance float64) (*domain.Account, error) {
	if initialBalance < 0 {
		return nil, domain.ErrInvalidAmount
	}
	cents, err := domain.DollarsToCents(initialBalance)
	if err != nil {
		return nil, &domain.ValidationError{
			Message: "initial_balance must have at most 2 decimal places",
		}
	}
	return s.ledger.CreateAccount(cents)
}

// UpdateBalance deposits (positive) or withdraws (negative) cash. A
// withdrawal never dips into held funds: those are committed to open buy
// orders until settlement releases them.
func (s *AccountService) UpdateBalance(accountID int64, amount float64) (store.AccountSnapshot, error) {
	cents, err := domain.DollarsToCents(amount)
	if err != nil {
		return store.AccountSnapshot{}, &domain.ValidationError{
			Message: "amount must have at most 2 decimal places",
		}
	}
	return s.ledger.UpdateBalance(accountID, cents)
}

// GetBalance returns the account's cash state, including the held amount
// and the spendable remainder.
func (s *AccountService) GetBalance(accountID int64) (store.AccountSnapshot, error) {
	return s.ledger.Balance(accountID)
}

// GetPortfolio returns a snapshot of the account's positions.
func (s *AccountService) GetPortfolio(accountID int64) ([]store.PositionSnapshot, error) {
	return s.ledger.Portfolio(accountID)
}
