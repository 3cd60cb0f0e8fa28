package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/service"
	"github.com/gmtavares/stockex/internal/store"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
	orderSvc   *service.OrderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, orderSvc *service.OrderService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
		orderSvc:   orderSvc,
	}
}

// accountResponse is the JSON response for POST /accounts (201 Created).
type accountResponse struct {
	AccountID int64   `json:"account_id"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

// balanceResponse is the JSON response for GET /accounts/{account_id}/balance.
type balanceResponse struct {
	AccountID        int64   `json:"account_id"`
	Balance          float64 `json:"balance"`
	HeldAmount       float64 `json:"held_amount"`
	AvailableBalance float64 `json:"available_balance"`
}

// positionResponse is a single position in the portfolio response.
type positionResponse struct {
	InstrumentID      string  `json:"instrument_id"`
	Quantity          int64   `json:"quantity"`
	LockedInTrade     int64   `json:"locked_in_trade"`
	AvailableQuantity int64   `json:"available_quantity"`
	AvgCost           float64 `json:"avg_cost"`
}

// portfolioResponse is the JSON response for GET /accounts/{account_id}/portfolio.
type portfolioResponse struct {
	AccountID int64              `json:"account_id"`
	Positions []positionResponse `json:"positions"`
}

// Add handles POST /accounts.
func (h *AccountHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := validateInput(&req); err != nil {
		mapAccountError(w, err)
		return
	}

	acc, err := h.accountSvc.AddAccount(req.InitialBalance)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, accountResponse{
		AccountID: acc.ID,
		Balance:   domain.CentsToDollars(acc.Balance),
		CreatedAt: acc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// UpdateBalance handles POST /accounts/{account_id}/balance.
func (h *AccountHandler) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	var req updateBalanceRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := validateInput(&req); err != nil {
		mapAccountError(w, err)
		return
	}

	snap, err := h.accountSvc.UpdateBalance(accountID, req.Amount)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBalanceResponse(snap))
}

// GetBalance handles GET /accounts/{account_id}/balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	snap, err := h.accountSvc.GetBalance(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toBalanceResponse(snap))
}

// GetPortfolio handles GET /accounts/{account_id}/portfolio.
func (h *AccountHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	positions, err := h.accountSvc.GetPortfolio(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	resp := portfolioResponse{
		AccountID: accountID,
		Positions: make([]positionResponse, len(positions)),
	}
	for i, p := range positions {
		resp.Positions[i] = positionResponse{
			InstrumentID:      p.InstrumentID,
			Quantity:          p.Quantity,
			LockedInTrade:     p.LockedInTrade,
			AvailableQuantity: p.AvailableQuantity,
			// AvgCost is cents as a decimal; shift to dollars.
			AvgCost: p.AvgCost.Shift(-2).InexactFloat64(),
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ListOrders handles GET /accounts/{account_id}/orders.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderSvc.GetOrderHistory(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// parseAccountID extracts the account_id URL parameter. It writes a 400
// response and returns false when the parameter is not a positive integer.
func parseAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "account_id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "account_id must be a positive integer")
		return 0, false
	}
	return id, true
}

func toBalanceResponse(snap store.AccountSnapshot) balanceResponse {
	return balanceResponse{
		AccountID:        snap.AccountID,
		Balance:          domain.CentsToDollars(snap.Balance),
		HeldAmount:       domain.CentsToDollars(snap.HeldAmount),
		AvailableBalance: domain.CentsToDollars(snap.AvailableBalance),
	}
}

// mapAccountError maps domain errors to HTTP responses for account
// endpoints.
func mapAccountError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrPortfolioNotFound):
		WriteError(w, http.StatusNotFound, "portfolio_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		WriteError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
