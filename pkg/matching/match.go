package matching

import "time"

// MatchResult describes one fill between an incoming and a resting order.
// Price is always the resting order's price. It is delivered to registered
// match callbacks alongside (never instead of) the event log.
type MatchResult struct {
	BuyOrderID  OrderID
	SellOrderID OrderID
	Price       int64
	Qty         int64
	Timestamp   time.Time
}
