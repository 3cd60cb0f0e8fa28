package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/gmtavares/stockex/internal/domain"
)

var validate = validator.New()

// validateInput runs struct-tag validation on a decoded request body and
// converts any failure into a domain ValidationError so handlers map it
// to 400 like every other shape failure.
func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// addInstrumentRequest is the JSON request body for POST /instruments.
type addInstrumentRequest struct {
	InstrumentID string  `json:"instrument_id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Quantity     int64   `json:"quantity" validate:"gte=0"`
}

// addAccountRequest is the JSON request body for POST /accounts.
type addAccountRequest struct {
	InitialBalance float64 `json:"initial_balance" validate:"gte=0"`
}

// updateBalanceRequest is the JSON request body for
// POST /accounts/{account_id}/balance. Amount is a signed delta:
// positive deposits, negative withdraws.
type updateBalanceRequest struct {
	Amount float64 `json:"amount" validate:"required"`
}

// placeOrderRequest is the JSON request body for POST /orders.
type placeOrderRequest struct {
	AccountID    int64   `json:"account_id" validate:"required,gt=0"`
	InstrumentID string  `json:"instrument_id" validate:"required"`
	Side         string  `json:"side" validate:"required,oneof=buy sell"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Quantity     int64   `json:"quantity" validate:"required,gt=0"`
}
