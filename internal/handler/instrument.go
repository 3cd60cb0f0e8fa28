package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/service"
)

// InstrumentHandler handles HTTP requests for instrument endpoints.
type InstrumentHandler struct {
	instrumentSvc *service.InstrumentService
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(instrumentSvc *service.InstrumentService) *InstrumentHandler {
	return &InstrumentHandler{instrumentSvc: instrumentSvc}
}

// instrumentResponse is the JSON representation of an instrument.
type instrumentResponse struct {
	InstrumentID string  `json:"instrument_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	CreatedAt    string  `json:"created_at"`
}

// bookLevelResponse is a single aggregated price level.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /instruments/{instrument_id}/book.
type bookResponse struct {
	InstrumentID string              `json:"instrument_id"`
	Bids         []bookLevelResponse `json:"bids"`
	Asks         []bookLevelResponse `json:"asks"`
	Spread       *float64            `json:"spread"`
	SnapshotAt   string              `json:"snapshot_at"`
}

// Add handles POST /instruments.
func (h *InstrumentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addInstrumentRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := validateInput(&req); err != nil {
		mapInstrumentError(w, err)
		return
	}

	inst, err := h.instrumentSvc.AddInstrument(service.AddInstrumentRequest{
		ID:       req.InstrumentID,
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toInstrumentResponse(inst))
}

// List handles GET /instruments.
func (h *InstrumentHandler) List(w http.ResponseWriter, r *http.Request) {
	instruments := h.instrumentSvc.List()
	resp := make([]instrumentResponse, len(instruments))
	for i, inst := range instruments {
		resp[i] = toInstrumentResponse(inst)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetBook handles GET /instruments/{instrument_id}/book.
func (h *InstrumentHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	depth := 10
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a valid integer")
			return
		}
	}

	book, err := h.instrumentSvc.GetBook(instrumentID, depth)
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	bids := make([]bookLevelResponse, len(book.Bids))
	for i, pl := range book.Bids {
		bids[i] = bookLevelResponse{
			Price:         domain.CentsToDollars(pl.Price),
			TotalQuantity: pl.TotalQuantity,
			OrderCount:    pl.OrderCount,
		}
	}
	asks := make([]bookLevelResponse, len(book.Asks))
	for i, pl := range book.Asks {
		asks[i] = bookLevelResponse{
			Price:         domain.CentsToDollars(pl.Price),
			TotalQuantity: pl.TotalQuantity,
			OrderCount:    pl.OrderCount,
		}
	}

	resp := bookResponse{
		InstrumentID: book.InstrumentID,
		Bids:         bids,
		Asks:         asks,
		SnapshotAt:   book.SnapshotAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if book.Spread != nil {
		spread := domain.CentsToDollars(*book.Spread)
		resp.Spread = &spread
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ListTrades handles GET /instruments/{instrument_id}/trades.
func (h *InstrumentHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	trades, err := h.instrumentSvc.ListTrades(instrumentID)
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	resp := make([]tradeResponse, len(trades))
	for i, t := range trades {
		resp[i] = toTradeResponse(t)
	}
	WriteJSON(w, http.StatusOK, resp)
}

func toInstrumentResponse(inst *domain.Instrument) instrumentResponse {
	return instrumentResponse{
		InstrumentID: inst.ID,
		Name:         inst.Name,
		Price:        domain.CentsToDollars(inst.ReferencePrice),
		Quantity:     inst.AvailableSupply,
		CreatedAt:    inst.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// mapInstrumentError maps domain errors to HTTP responses for instrument
// endpoints.
func mapInstrumentError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInstrumentAlreadyExists):
		WriteError(w, http.StatusConflict, "instrument_already_exists", err.Error())
	case errors.Is(err, domain.ErrInstrumentNotFound):
		WriteError(w, http.StatusNotFound, "instrument_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
