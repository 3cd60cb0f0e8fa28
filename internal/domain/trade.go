package domain

import "time"

// Trade represents a matched execution between a buy and a sell order.
type Trade struct {
	TradeID      string // uuid
	InstrumentID string
	BuyOrderID   int64
	SellOrderID  int64
	Price        int64 // cents
	Quantity     int64
	ExecutedAt   time.Time
}
