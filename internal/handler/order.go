package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
	logger   *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderSvc: orderSvc,
		logger:   logger,
	}
}

// orderResponse is the JSON representation of an order history record.
type orderResponse struct {
	OrderID      int64   `json:"order_id"`
	AccountID    int64   `json:"account_id"`
	InstrumentID string  `json:"instrument_id"`
	Side         string  `json:"side"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

// tradeResponse is the JSON representation of an executed trade.
type tradeResponse struct {
	TradeID      string  `json:"trade_id"`
	InstrumentID string  `json:"instrument_id"`
	BuyOrderID   int64   `json:"buy_order_id"`
	SellOrderID  int64   `json:"sell_order_id"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	ExecutedAt   string  `json:"executed_at"`
}

// placeOrderResponse is the JSON response for POST /orders (201 Created).
type placeOrderResponse struct {
	Order  orderResponse   `json:"order"`
	Trades []tradeResponse `json:"trades"`
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := validateInput(&req); err != nil {
		h.mapOrderError(w, err)
		return
	}

	order, trades, err := h.orderSvc.PlaceOrder(service.PlaceOrderRequest{
		AccountID:    req.AccountID,
		InstrumentID: req.InstrumentID,
		Side:         domain.OrderSide(req.Side),
		Price:        req.Price,
		Quantity:     req.Quantity,
	})
	if err != nil {
		h.mapOrderError(w, err)
		return
	}

	resp := placeOrderResponse{
		Order:  toOrderResponse(order),
		Trades: make([]tradeResponse, len(trades)),
	}
	for i, t := range trades {
		resp.Trades[i] = toTradeResponse(t)
	}

	WriteJSON(w, http.StatusCreated, resp)
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "order_id must be a positive integer")
		return
	}

	order, err := h.orderSvc.GetOrder(orderID)
	if err != nil {
		h.mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		OrderID:      o.ID,
		AccountID:    o.AccountID,
		InstrumentID: o.InstrumentID,
		Side:         string(o.Side),
		Price:        domain.CentsToDollars(o.Price),
		Quantity:     o.Quantity,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:      t.TradeID,
		InstrumentID: t.InstrumentID,
		BuyOrderID:   t.BuyOrderID,
		SellOrderID:  t.SellOrderID,
		Price:        domain.CentsToDollars(t.Price),
		Quantity:     t.Quantity,
		ExecutedAt:   t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
// A ledger InconsistencyError means the books can no longer be trusted;
// it is logged at error level with full detail, never folded into a
// generic validation failure.
func (h *OrderHandler) mapOrderError(w http.ResponseWriter, err error) {
	var inconsistencyErr *domain.InconsistencyError
	if errors.As(err, &inconsistencyErr) {
		h.logger.Error("ledger inconsistency detected",
			slog.Int64("account_id", inconsistencyErr.AccountID),
			slog.String("detail", inconsistencyErr.Message),
		)
		WriteError(w, http.StatusInternalServerError, "internal_inconsistency",
			"Ledger invariant violation; the operation was aborted")
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrPortfolioNotFound):
		WriteError(w, http.StatusNotFound, "portfolio_not_found", err.Error())
	case errors.Is(err, domain.ErrInstrumentUnavailable):
		WriteError(w, http.StatusUnprocessableEntity, "instrument_unavailable", err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_stock", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
