package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "PendingNew"
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusReplaced        OrderStatus = "Replaced"
	OrderStatusRejected        OrderStatus = "Rejected"
)

type OrderExecType string

const (
	ExecTypeNew      OrderExecType = "New"
	ExecTypeCanceled OrderExecType = "Canceled"
	ExecTypeReplaced OrderExecType = "Replaced"
	ExecTypeRejected OrderExecType = "Rejected"
	ExecTypeTrade    OrderExecType = "Trade"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeGoodTilCancel OrderType = "GTC"
	OrderTypeFillAndKill   OrderType = "FAK"
)

// Order is the OMS view of an order: the immutable submission fields plus the
// execution state accumulated from engine events.
type Order struct {
	// init info
	Symbol       string
	Side         OrderSide
	Type         OrderType
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	Account      string
	TransactTime time.Time

	// calculated info
	OrderID        string
	GatewayID      string
	Status         OrderStatus
	ExecType       OrderExecType
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastQuantity   decimal.Decimal
	LastPrice      decimal.Decimal
}

// UpdateAddOrder seeds the order from a gateway submission.
func (o *Order) UpdateAddOrder(add *AddOrder) {
	o.Symbol = add.Symbol
	o.Side = add.Side
	o.Type = add.Type
	o.Price = add.Price
	o.Quantity = add.Quantity
	o.Account = add.Account
	o.TransactTime = add.TransactTime
	o.GatewayID = add.GatewayID
	o.Status = OrderStatusPendingNew
	o.ExecType = ExecTypeNew
	o.CumQuantity = decimal.Zero
	o.LeavesQuantity = add.Quantity
	o.LastQuantity = decimal.Zero
	o.LastPrice = decimal.Zero
}

// UpdateAccepted marks the order live in the book.
func (o *Order) UpdateAccepted(orderID string) {
	o.OrderID = orderID
	o.Status = OrderStatusNew
	o.ExecType = ExecTypeNew
}

// UpdateCancelOrder marks the order canceled; the leaves quantity dies with it.
func (o *Order) UpdateCancelOrder(cancel *CancelOrder) {
	o.GatewayID = cancel.GatewayID
	o.Status = OrderStatusCanceled
	o.ExecType = ExecTypeCanceled
	o.LeavesQuantity = decimal.Zero
}

// UpdateModifyOrder applies a cancel/replace: new price and quantity, with the
// already-executed quantity carried over.
func (o *Order) UpdateModifyOrder(modify *ModifyOrder) {
	o.GatewayID = modify.GatewayID
	o.Price = modify.NewPrice
	o.Quantity = modify.NewQuantity
	o.Status = OrderStatusReplaced
	o.ExecType = ExecTypeReplaced
	o.LeavesQuantity = modify.NewQuantity.Sub(o.CumQuantity)
	if o.LeavesQuantity.IsNegative() {
		o.LeavesQuantity = decimal.Zero
	}
}

// ApplyFill books one execution against the order.
func (o *Order) ApplyFill(qty, price decimal.Decimal) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.LeavesQuantity.Sub(qty)
	o.LastQuantity = qty
	o.LastPrice = price
	o.ExecType = ExecTypeTrade
	if o.LeavesQuantity.IsPositive() {
		o.Status = OrderStatusPartiallyFilled
	} else {
		o.Status = OrderStatusFilled
	}
}

func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusNew, OrderStatusPartiallyFilled, OrderStatusReplaced:
		return true
	}
	return false
}

func (o *Order) CanModify() bool {
	return o.CanCancel()
}

// IsEnd reports whether the order can no longer change.
func (o *Order) IsEnd() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	}
	return false
}
