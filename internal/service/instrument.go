package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gmtavares/stockex/internal/domain"
	"github.com/gmtavares/stockex/internal/engine"
	"github.com/gmtavares/stockex/internal/store"
)

var tickerRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// AddInstrumentRequest represents the input for listing a new instrument.
type AddInstrumentRequest struct {
	ID       string
	Name     string
	Price    float64 // reference price in dollars
	Quantity int64   // available supply
}

// BookPriceLevel represents an aggregated price level in the book response.
type BookPriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// BookResponse represents a depth-limited order book snapshot.
type BookResponse struct {
	InstrumentID string
	Bids         []BookPriceLevel
	Asks         []BookPriceLevel
	Spread       *int64 // nil if either side empty
	SnapshotAt   time.Time
}

// InstrumentService handles instrument listing and book queries.
type InstrumentService struct {
	instruments *store.InstrumentStore
	tradeStore  *store.TradeStore
	books       *engine.BookManager
	depthLimit  int
}

// NewInstrumentService creates a new InstrumentService.
func NewInstrumentService(
	instruments *store.InstrumentStore,
	tradeStore *store.TradeStore,
	books *engine.BookManager,
	depthLimit int,
) *InstrumentService {
	return &InstrumentService{
		instruments: instruments,
		tradeStore:  tradeStore,
		books:       books,
		depthLimit:  depthLimit,
	}
}

// AddInstrument validates the request and lists the instrument. This is
// the administrative add: it is the only way an instrument comes into
// existence, and instruments are never deleted.
func (s *InstrumentService) AddInstrument(req AddInstrumentRequest) (*domain.Instrument, error) {
	if !tickerRegex.MatchString(req.ID) {
		return nil, &domain.ValidationError{
			Message: "instrument_id must match ^[A-Z]{1,10}$",
		}
	}
	if req.Name == "" || len(req.Name) > 128 {
		return nil, &domain.ValidationError{
			Message: "name must be between 1 and 128 characters",
		}
	}
	if req.Price <= 0 {
		return nil, &domain.ValidationError{
			Message: "price must be > 0",
		}
	}
	priceCents, err := domain.DollarsToCents(req.Price)
	if err != nil {
		return nil, &domain.ValidationError{
			Message: "price must have at most 2 decimal places",
		}
	}
	if req.Quantity < 0 {
		return nil, &domain.ValidationError{
			Message: "quantity must be >= 0",
		}
	}

	inst := &domain.Instrument{
		ID:              req.ID,
		Name:            req.Name,
		ReferencePrice:  priceCents,
		AvailableSupply: req.Quantity,
		CreatedAt:       time.Now(),
	}
	if err := s.instruments.Create(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// List returns all listed instruments in creation order.
func (s *InstrumentService) List() []*domain.Instrument {
	return s.instruments.List()
}

// GetBook returns the top N price levels of the instrument's order book.
func (s *InstrumentService) GetBook(instrumentID string, depth int) (*BookResponse, error) {
	if _, err := s.instruments.Get(instrumentID); err != nil {
		return nil, err
	}
	if depth < 1 || depth > s.depthLimit {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("depth must be between 1 and %d", s.depthLimit),
		}
	}

	book := s.books.GetOrCreate(instrumentID)

	book.RLock()
	defer book.RUnlock()

	topBids := book.TopBids(depth)
	topAsks := book.TopAsks(depth)

	bids := make([]BookPriceLevel, len(topBids))
	for i, pl := range topBids {
		bids[i] = BookPriceLevel(pl)
	}
	asks := make([]BookPriceLevel, len(topAsks))
	for i, pl := range topAsks {
		asks[i] = BookPriceLevel(pl)
	}

	resp := &BookResponse{
		InstrumentID: instrumentID,
		Bids:         bids,
		Asks:         asks,
		SnapshotAt:   time.Now(),
	}

	// Spread is best ask minus best bid, nil if either side is empty.
	if len(topBids) > 0 && len(topAsks) > 0 {
		spread := topAsks[0].Price - topBids[0].Price
		resp.Spread = &spread
	}

	return resp, nil
}

// ListTrades returns the instrument's executed trades in chronological
// order.
func (s *InstrumentService) ListTrades(instrumentID string) ([]*domain.Trade, error) {
	if _, err := s.instruments.Get(instrumentID); err != nil {
		return nil, err
	}
	return s.tradeStore.ListByInstrument(instrumentID), nil
}
