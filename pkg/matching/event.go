package matching

import "time"

// Event is the closed output vocabulary of the book. The event log is
// append-only and is the only record of what matching happened; the book
// itself exposes resting state only.
type Event interface {
	isEvent()
}

// PlacedEvent is emitted exactly once per accepted new order, before any
// matching is attempted.
type PlacedEvent struct {
	ID        OrderID
	Side      Side
	Type      OrderType
	Price     int64
	Timestamp time.Time
}

// CanceledEvent is emitted iff a cancel actually removed a resting order.
type CanceledEvent struct {
	ID OrderID
}

// PartiallyFilledEvent carries the quantity taken from the order in one match
// step. Price is the resting level's price.
type PartiallyFilledEvent struct {
	ID        OrderID
	Price     int64
	Qty       int64
	Timestamp time.Time
}

// FilledEvent marks an order fully consumed. Price is the resting level's
// price of the final match step.
type FilledEvent struct {
	ID        OrderID
	Price     int64
	Timestamp time.Time
}

func (PlacedEvent) isEvent()          {}
func (CanceledEvent) isEvent()        {}
func (PartiallyFilledEvent) isEvent() {}
func (FilledEvent) isEvent()          {}
