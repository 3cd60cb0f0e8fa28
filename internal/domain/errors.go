package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInstrumentAlreadyExists = errors.New("instrument_already_exists")
	ErrInstrumentNotFound      = errors.New("instrument_not_found")
	ErrInstrumentUnavailable   = errors.New("instrument_unavailable")
	ErrAccountNotFound         = errors.New("account_not_found")
	ErrPortfolioNotFound       = errors.New("portfolio_not_found")
	ErrPositionNotFound        = errors.New("position_not_found")
	ErrOrderNotFound           = errors.New("order_not_found")
	ErrInsufficientBalance     = errors.New("insufficient_balance")
	ErrInsufficientStock       = errors.New("insufficient_stock")
	ErrInvalidAmount           = errors.New("invalid_amount")
)

// ValidationError represents a request validation failure. Validation
// failures are expected control flow and leave all state unchanged.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InconsistencyError reports a ledger invariant violation: a hold, lock
// or settlement mutation that left an account outside its legal state.
// It always indicates a bookkeeping bug, never a bad request, and must
// be surfaced loudly rather than recovered from.
type InconsistencyError struct {
	AccountID int64
	Message   string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency on account %d: %s", e.AccountID, e.Message)
}

// Inconsistencyf builds an InconsistencyError with a formatted message.
func Inconsistencyf(accountID int64, format string, args ...any) *InconsistencyError {
	return &InconsistencyError{
		AccountID: accountID,
		Message:   fmt.Sprintf(format, args...),
	}
}
