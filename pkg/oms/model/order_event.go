package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderEvent is the persisted form of one execution report: what happened to
// which order, when. Rows are append-only.
type OrderEvent struct {
	EventID   string
	OrderID   string
	GatewayID string
	Symbol    string
	ExecType  OrderExecType
	Side      OrderSide
	Qty       int64
	Price     decimal.Decimal
	Timestamp time.Time
}

func (OrderEvent) TableName() string { return "order_events" }

func NewOrderEvent(order Order, ts time.Time) *OrderEvent {
	return &OrderEvent{
		EventID:   uuid.NewString(),
		OrderID:   order.OrderID,
		GatewayID: order.GatewayID,
		Symbol:    order.Symbol,
		ExecType:  order.ExecType,
		Side:      order.Side,
		Qty:       order.LastQuantity.IntPart(),
		Price:     order.LastPrice,
		Timestamp: ts,
	}
}
