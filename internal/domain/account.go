package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents an account's inventory in a single instrument.
// LockedInTrade is the quantity reserved by open sell orders; it must
// satisfy 0 ≤ LockedInTrade ≤ Quantity at all times. AvgCost is the
// quantity-weighted average acquisition price in cents, kept as a
// decimal because integer cents lose precision across partial fills.
type Position struct {
	Quantity      int64
	LockedInTrade int64
	AvgCost       decimal.Decimal // cents
}

// AvailableQuantity returns the quantity not reserved by open sell orders.
func (p *Position) AvailableQuantity() int64 {
	return p.Quantity - p.LockedInTrade
}

// Account represents a registered participant on the exchange. IDs are
// assigned sequentially at creation. HeldAmount is cash reserved by open
// buy orders; after every complete operation 0 ≤ HeldAmount ≤ Balance
// must hold — a violation is a settlement or hold bug, not a user error.
type Account struct {
	ID         int64
	Balance    int64 // total cash in cents
	HeldAmount int64 // cash locked by open buy orders, in cents
	Positions  map[string]*Position // instrument id → position
	CreatedAt  time.Time
}

// AvailableBalance returns the account's unheld cash balance.
func (a *Account) AvailableBalance() int64 {
	return a.Balance - a.HeldAmount
}

// AvailableQuantity returns the sellable quantity for the given
// instrument, or 0 if the account has no position in it.
func (a *Account) AvailableQuantity(instrumentID string) int64 {
	p, ok := a.Positions[instrumentID]
	if !ok {
		return 0
	}
	return p.AvailableQuantity()
}
