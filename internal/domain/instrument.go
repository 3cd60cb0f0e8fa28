package domain

import "time"

// Instrument represents a tradable security listed on the exchange.
// Instruments are created once by an administrative add and are never
// deleted. Trading moves inventory between accounts; it does not touch
// the instrument-level supply counter.
type Instrument struct {
	ID              string // ticker, unique key
	Name            string
	ReferencePrice  int64 // cents
	AvailableSupply int64
	CreatedAt       time.Time
}
