package eventstore

import (
	"testing"
	"time"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

func TestGatewayChain(t *testing.T) {
	s := NewInMemoryEventStore()

	s.TrackGateway("ORD-1", "GW-1")
	s.TrackGateway("ORD-1", "GW-2") // cancel/replace under a new gateway id

	if got := s.OrderIDByGateway("GW-1"); got != "ORD-1" {
		t.Errorf("expected ORD-1, got %q", got)
	}
	if got := s.OrderIDByGateway("GW-2"); got != "ORD-1" {
		t.Errorf("expected ORD-1, got %q", got)
	}
	if got := s.LatestGatewayID("ORD-1"); got != "GW-2" {
		t.Errorf("expected latest GW-2, got %q", got)
	}
	if got := s.OrderIDByGateway("GW-404"); got != "" {
		t.Errorf("expected empty for unknown gateway id, got %q", got)
	}
}

func TestRelinkOrder(t *testing.T) {
	s := NewInMemoryEventStore()
	s.TrackGateway("ORD-1", "GW-1")
	s.AddEvent(&model.OrderEvent{EventID: "E-1", OrderID: "ORD-1", Timestamp: time.Now()})

	s.RelinkOrder("ORD-1", "ORD-2")

	if got := s.OrderIDByGateway("GW-1"); got != "ORD-2" {
		t.Errorf("expected GW-1 to resolve to ORD-2, got %q", got)
	}
	if evs := s.EventsByOrderID("ORD-2"); len(evs) != 1 {
		t.Errorf("expected event moved to ORD-2, got %d", len(evs))
	}
	if evs := s.EventsByOrderID("ORD-1"); len(evs) != 0 {
		t.Errorf("expected no events left on ORD-1, got %d", len(evs))
	}
	if got := s.LatestGatewayID("ORD-2"); got != "GW-1" {
		t.Errorf("expected latest GW-1 on ORD-2, got %q", got)
	}
}

func TestDeleteChain(t *testing.T) {
	s := NewInMemoryEventStore()
	s.TrackGateway("ORD-1", "GW-1")
	s.AddEvent(&model.OrderEvent{EventID: "E-1", OrderID: "ORD-1", Timestamp: time.Now()})

	if evs := s.EventsByOrderID("ORD-1"); len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}

	s.DeleteChainByOrderID("ORD-1")

	if evs := s.EventsByOrderID("ORD-1"); len(evs) != 0 {
		t.Errorf("expected no events after delete, got %d", len(evs))
	}
	if got := s.OrderIDByGateway("GW-1"); got != "" {
		t.Errorf("expected gateway link removed, got %q", got)
	}
}
