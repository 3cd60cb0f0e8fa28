package store

import (
	"sync"

	"github.com/gmtavares/stockex/internal/domain"
)

// InstrumentStore is a thread-safe in-memory store for instruments,
// keyed by ticker. Instruments are never deleted.
type InstrumentStore struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
	tickers     []string // creation order, for listing
}

// NewInstrumentStore creates an empty InstrumentStore.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		instruments: make(map[string]*domain.Instrument),
	}
}

// Create adds an instrument to the store. It returns
// domain.ErrInstrumentAlreadyExists if the ticker is already listed.
func (s *InstrumentStore) Create(inst *domain.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.instruments[inst.ID]; exists {
		return domain.ErrInstrumentAlreadyExists
	}
	s.instruments[inst.ID] = inst
	s.tickers = append(s.tickers, inst.ID)
	return nil
}

// Get retrieves an instrument by ticker. It returns
// domain.ErrInstrumentNotFound if the instrument does not exist.
func (s *InstrumentStore) Get(id string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[id]
	if !ok {
		return nil, domain.ErrInstrumentNotFound
	}
	return inst, nil
}

// List returns all instruments in creation order.
func (s *InstrumentStore) List() []*domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Instrument, 0, len(s.tickers))
	for _, ticker := range s.tickers {
		result = append(result, s.instruments[ticker])
	}
	return result
}
