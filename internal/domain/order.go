package domain

import "time"

// OrderSide indicates whether an order buys or sells the instrument.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order. An order is
// pending at the exchange from submission until its resting quantity
// reaches zero through matching, at which point it becomes done.
type OrderStatus string

const (
	OrderStatusPendingAtExchange OrderStatus = "pending_at_exchange"
	OrderStatusDone              OrderStatus = "done"
)

// Order is the audit record of a submission. The identity fields are
// immutable; only Status changes over the order's life. Orders are never
// deleted — the history retains every order ever submitted.
type Order struct {
	ID           int64 // sequential
	AccountID    int64
	InstrumentID string
	Side         OrderSide
	Price        int64 // limit price in cents
	Quantity     int64 // original quantity, immutable
	Status       OrderStatus
	CreatedAt    time.Time
}
