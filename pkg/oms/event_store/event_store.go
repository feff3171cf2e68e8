package eventstore

import "github.com/joripage/matching-engine/pkg/oms/model"

// EventStore keeps per-order execution reports and the gateway-ID chain used
// for idempotency and cancel/modify resolution.
type EventStore interface {
	AddEvent(ev *model.OrderEvent)
	TrackGateway(orderID, gatewayID string)
	OrderIDByGateway(gatewayID string) string
	LatestGatewayID(orderID string) string
	EventsByOrderID(orderID string) []*model.OrderEvent
	RelinkOrder(oldOrderID, newOrderID string)
	DeleteChainByOrderID(orderID string)
}
