package store

import (
	"sync"

	"github.com/gmtavares/stockex/internal/domain"
)

// TradeStore is a thread-safe in-memory store for executed trades,
// keyed by instrument. Trades are append-only and chronological.
type TradeStore struct {
	mu     sync.RWMutex
	trades map[string][]*domain.Trade // instrument id → trades (chronological)
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[string][]*domain.Trade),
	}
}

// Append adds a trade to the instrument's chronological list.
func (s *TradeStore) Append(instrumentID string, t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[instrumentID] = append(s.trades[instrumentID], t)
}

// ListByInstrument returns all trades for an instrument in chronological
// order. Returns an empty slice if none have executed.
func (s *TradeStore) ListByInstrument(instrumentID string) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[instrumentID]
	result := make([]*domain.Trade, len(trades))
	copy(result, trades)
	return result
}
