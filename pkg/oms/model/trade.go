package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is the external report of one match: a buy/sell order pair with the
// executed price and quantity.
type Trade struct {
	TradeID     string
	Symbol      string
	BuyOrderID  string
	SellOrderID string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	ExecutedAt  time.Time
}

func (Trade) TableName() string { return "trades" }

func NewTrade(symbol, buyOrderID, sellOrderID string, price, qty decimal.Decimal, executedAt time.Time) *Trade {
	return &Trade{
		TradeID:     uuid.NewString(),
		Symbol:      symbol,
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Quantity:    qty,
		ExecutedAt:  executedAt,
	}
}
