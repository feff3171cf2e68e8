package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOrder is a gateway submission of a new order. GatewayID is the caller's
// idempotency key; the OMS rejects a reused one.
type AddOrder struct {
	GatewayID    string
	Account      string
	Symbol       string
	Type         OrderType
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

// CancelOrder targets the live order previously submitted under
// OrigGatewayID.
type CancelOrder struct {
	GatewayID     string
	OrigGatewayID string
	Symbol        string
}

// ModifyOrder is a cancel/replace: the resting order identified by
// OrigGatewayID is canceled and re-entered with the new price, quantity and
// type, losing time priority.
type ModifyOrder struct {
	GatewayID     string
	OrigGatewayID string
	Symbol        string
	NewPrice      decimal.Decimal
	NewQuantity   decimal.Decimal
	Type          OrderType
}
