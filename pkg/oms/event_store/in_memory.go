package eventstore

import (
	"sync"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

type InMemoryEventStore struct {
	mu              sync.RWMutex
	events          map[string][]*model.OrderEvent
	gatewayToOrder  map[string]string   // GatewayID -> OrderID
	orderToGateways map[string][]string // OrderID -> every GatewayID seen, newest last
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events:          make(map[string][]*model.OrderEvent),
		gatewayToOrder:  make(map[string]string),
		orderToGateways: make(map[string][]string),
	}
}

func (s *InMemoryEventStore) AddEvent(ev *model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[ev.OrderID] = append(s.events[ev.OrderID], ev)
}

// TrackGateway links a gateway id to an order id. Each cancel/replace adds a
// new link; the newest one is the order's current gateway id.
func (s *InMemoryEventStore) TrackGateway(orderID, gatewayID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gatewayToOrder[gatewayID] = orderID
	s.orderToGateways[orderID] = append(s.orderToGateways[orderID], gatewayID)
}

func (s *InMemoryEventStore) OrderIDByGateway(gatewayID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gatewayToOrder[gatewayID]
}

func (s *InMemoryEventStore) LatestGatewayID(orderID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.orderToGateways[orderID]
	if len(chain) == 0 {
		return ""
	}
	return chain[len(chain)-1]
}

func (s *InMemoryEventStore) EventsByOrderID(orderID string) []*model.OrderEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*model.OrderEvent(nil), s.events[orderID]...)
}

// RelinkOrder moves an order's events and gateway links to a new order id,
// used when a cancel/replace rests the order under a fresh id. Gateway ids
// from the old chain keep resolving, so replayed submissions stay deduped.
func (s *InMemoryEventStore) RelinkOrder(oldOrderID, newOrderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, gatewayID := range s.orderToGateways[oldOrderID] {
		s.gatewayToOrder[gatewayID] = newOrderID
	}
	s.orderToGateways[newOrderID] = append(s.orderToGateways[newOrderID], s.orderToGateways[oldOrderID]...)
	delete(s.orderToGateways, oldOrderID)

	s.events[newOrderID] = append(s.events[newOrderID], s.events[oldOrderID]...)
	delete(s.events, oldOrderID)
}

// DeleteChainByOrderID drops a finished order's events and gateway links.
func (s *InMemoryEventStore) DeleteChainByOrderID(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, gatewayID := range s.orderToGateways[orderID] {
		delete(s.gatewayToOrder, gatewayID)
	}
	delete(s.orderToGateways, orderID)
	delete(s.events, orderID)
}
