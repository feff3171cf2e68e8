package matching

import "time"

// OrderID is an opaque identifier, unique across the book's lifetime.
type OrderID string

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

type OrderType string

const (
	// GoodTilCancel rests until fully filled or explicitly canceled.
	GoodTilCancel OrderType = "GTC"
	// FillAndKill executes against available liquidity and discards the rest.
	FillAndKill OrderType = "FAK"
)

// Order is a single resting or incoming order. Identity fields never change
// after construction; only RemainingQty and UpdatedAt move, and RemainingQty
// only moves down.
type Order struct {
	ID           OrderID
	Type         OrderType
	Side         Side
	Price        int64 // ticks
	InitialQty   int64
	RemainingQty int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fill consumes qty from the order's remaining quantity and refreshes its
// update timestamp. It fails with ErrInsufficientQty when qty exceeds the
// remaining quantity; the order is untouched in that case.
func (o *Order) Fill(qty int64, now time.Time) error {
	if qty > o.RemainingQty {
		return ErrInsufficientQty
	}
	o.RemainingQty -= qty
	o.UpdatedAt = now
	return nil
}

// IsFilled reports whether the order has no quantity left.
func (o *Order) IsFilled() bool {
	return o.RemainingQty == 0
}
