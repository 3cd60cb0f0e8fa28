package engine

import (
	"sync"

	"github.com/google/btree"

	"github.com/gmtavares/stockex/internal/domain"
)

// Entry is the order-book-local projection of an order: the fields
// matching needs, plus a remaining quantity that shrinks fill by fill.
// The order's original quantity in the history is immutable audit data;
// Remaining here is the live counter. Seq is the arrival counter that
// makes FIFO-within-a-price-level an explicit, testable tie-break.
type Entry struct {
	Seq       uint64
	OrderID   int64
	AccountID int64
	Side      domain.OrderSide
	Price     int64
	Remaining int64
}

// bidLess orders the bid side: price descending, then arrival ascending.
// Min() therefore returns the best bid (highest price, earliest arrival).
func bidLess(a, b *Entry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Seq < b.Seq
}

// askLess orders the ask side: price ascending, then arrival ascending.
// Min() returns the best ask (lowest price, earliest arrival).
func askLess(a, b *Entry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Seq < b.Seq
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// OrderBook maintains the resting buy and sell orders for a single
// instrument as two B-trees, giving O(log n) insertion and O(1) peek of
// the best entry on either side. A side with no resting orders is simply
// empty, never absent.
type OrderBook struct {
	instrumentID string
	mu           sync.RWMutex
	bids         *btree.BTreeG[*Entry]
	asks         *btree.BTreeG[*Entry]
	nextSeq      uint64
}

// NewOrderBook creates an order book for the given instrument.
func NewOrderBook(instrumentID string) *OrderBook {
	const degree = 32
	return &OrderBook{
		instrumentID: instrumentID,
		bids:         btree.NewG(degree, bidLess),
		asks:         btree.NewG(degree, askLess),
	}
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// Insert places the entry on the side matching its direction, stamping
// it with the next arrival sequence number.
func (ob *OrderBook) Insert(e *Entry) {
	ob.nextSeq++
	e.Seq = ob.nextSeq
	if e.Side == domain.OrderSideBuy {
		ob.bids.ReplaceOrInsert(e)
	} else {
		ob.asks.ReplaceOrInsert(e)
	}
}

// BestBid returns the highest-priority buy entry, if any.
func (ob *OrderBook) BestBid() (*Entry, bool) {
	return ob.bids.Min()
}

// BestAsk returns the highest-priority sell entry, if any.
func (ob *OrderBook) BestAsk() (*Entry, bool) {
	return ob.asks.Min()
}

// ReduceOrRemove decrements the entry's remaining quantity by filled and
// removes it from its side when the remainder reaches zero. It reports
// whether the entry was removed, so the caller can mark the order done
// in the history.
func (ob *OrderBook) ReduceOrRemove(e *Entry, filled int64) bool {
	e.Remaining -= filled
	if e.Remaining > 0 {
		return false
	}
	if e.Side == domain.OrderSideBuy {
		ob.bids.Delete(e)
	} else {
		ob.asks.Delete(e)
	}
	return true
}

// TopBids returns up to n aggregated price levels from the bid side,
// ordered by price descending.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// ordered by price ascending.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.asks, n)
}

// topLevels iterates the B-tree in order and aggregates entries into
// at most n price levels.
func topLevels(tree *btree.BTreeG[*Entry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(e *Entry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == e.Price {
			levels[len(levels)-1].TotalQuantity += e.Remaining
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         e.Price,
			TotalQuantity: e.Remaining,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// BidCount returns the number of resting buy orders.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of resting sell orders.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}

// BookManager is a thread-safe map from instrument ticker to OrderBook.
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given instrument, creating
// one if it doesn't already exist.
func (bm *BookManager) GetOrCreate(instrumentID string) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[instrumentID]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[instrumentID]; ok {
		return book
	}
	book = NewOrderBook(instrumentID)
	bm.books[instrumentID] = book
	return book
}
