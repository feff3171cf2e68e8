package oms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/matching"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

type recordingGateway struct {
	reports []model.Order
}

func (g *recordingGateway) Start(ctx context.Context) error { return nil }

func (g *recordingGateway) OnOrderReport(ctx context.Context, order model.Order) {
	g.reports = append(g.reports, order)
}

type seqIDGen struct{ n int }

func (g *seqIDGen) NextID() matching.OrderID {
	g.n++
	return matching.OrderID(fmt.Sprintf("O-%d", g.n))
}

func newTestOMS(t *testing.T) (*OMS, *recordingGateway) {
	t.Helper()
	gateway := &recordingGateway{}
	s := NewOMS(&Config{}, gateway, WithBookOptions(matching.WithIDGenerator(&seqIDGen{})))
	return s, gateway
}

func addOrder(gatewayID, symbol string, side model.OrderSide, price string, qty int64) *model.AddOrder {
	return &model.AddOrder{
		GatewayID:    gatewayID,
		Account:      "acc-1",
		Symbol:       symbol,
		Type:         model.OrderTypeGoodTilCancel,
		Side:         side,
		Price:        decimal.RequireFromString(price),
		Quantity:     decimal.NewFromInt(qty),
		TransactTime: time.Now(),
	}
}

func TestAddOrderAccepted(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "123.45", 100)); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	if len(gateway.reports) != 1 {
		t.Fatalf("want 1 report, got %d", len(gateway.reports))
	}
	report := gateway.reports[0]
	if report.Status != model.OrderStatusNew || report.ExecType != model.ExecTypeNew {
		t.Fatalf("unexpected report state: %s/%s", report.Status, report.ExecType)
	}
	if report.OrderID != "O-1" {
		t.Fatalf("want OrderID O-1, got %s", report.OrderID)
	}

	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Price != "123.45" || depth.Bids[0].Quantity != 100 {
		t.Fatalf("unexpected depth: %+v", depth.Bids)
	}
}

func TestAddOrderDuplicateGatewayID(t *testing.T) {
	s, _ := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != errDuplicateOrder {
		t.Fatalf("want errDuplicateOrder, got %v", err)
	}
}

func TestAddOrderValidation(t *testing.T) {
	s, _ := newTestOMS(t)
	ctx := context.Background()

	// default tick is 0.01
	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100.005", 10)); err != errInvalidOrderPrice {
		t.Fatalf("want errInvalidOrderPrice, got %v", err)
	}

	bad := addOrder("g-2", "AAPL", model.OrderSideBuy, "100", 10)
	bad.Quantity = decimal.RequireFromString("1.5")
	if err := s.AddOrder(ctx, bad); err != errInvalidOrderQty {
		t.Fatalf("want errInvalidOrderQty, got %v", err)
	}
}

func TestAddOrdersMatch(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 100)); err != nil {
		t.Fatalf("AddOrder buy: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-2", "AAPL", model.OrderSideSell, "100", 100)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}

	// New(buy), New(sell), Trade(buy), Trade(sell)
	if len(gateway.reports) != 4 {
		t.Fatalf("want 4 reports, got %d", len(gateway.reports))
	}
	buyFill, sellFill := gateway.reports[2], gateway.reports[3]
	for _, report := range []model.Order{buyFill, sellFill} {
		if report.Status != model.OrderStatusFilled || report.ExecType != model.ExecTypeTrade {
			t.Fatalf("unexpected fill report: %s/%s", report.Status, report.ExecType)
		}
		if !report.LastPrice.Equal(decimal.NewFromInt(100)) || !report.LastQuantity.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("unexpected fill price/qty: %s @ %s", report.LastQuantity, report.LastPrice)
		}
		if !report.LeavesQuantity.IsZero() {
			t.Fatalf("filled order has leaves %s", report.LeavesQuantity)
		}
	}
	if buyFill.Side != model.OrderSideBuy || sellFill.Side != model.OrderSideSell {
		t.Fatalf("fill reports out of order: %s, %s", buyFill.Side, sellFill.Side)
	}

	depth := s.Depth("AAPL")
	if len(depth.Bids) != 0 || len(depth.Asks) != 0 {
		t.Fatalf("book not empty after full match: %+v", depth)
	}
}

func TestPartialFillKeepsOrderLive(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 100)); err != nil {
		t.Fatalf("AddOrder buy: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-2", "AAPL", model.OrderSideSell, "100", 30)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}

	last := gateway.reports[len(gateway.reports)-1]
	if last.Side != model.OrderSideSell || last.Status != model.OrderStatusFilled {
		t.Fatalf("unexpected last report: %+v", last)
	}
	buyFill := gateway.reports[len(gateway.reports)-2]
	if buyFill.Status != model.OrderStatusPartiallyFilled || !buyFill.LeavesQuantity.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected buy report: %s leaves %s", buyFill.Status, buyFill.LeavesQuantity)
	}

	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Quantity != 70 {
		t.Fatalf("unexpected depth after partial fill: %+v", depth.Bids)
	}
}

func TestCancelOrder(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	cancel := &model.CancelOrder{GatewayID: "g-2", OrigGatewayID: "g-1", Symbol: "AAPL"}
	if err := s.CancelOrder(ctx, cancel); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	last := gateway.reports[len(gateway.reports)-1]
	if last.Status != model.OrderStatusCanceled || last.ExecType != model.ExecTypeCanceled {
		t.Fatalf("unexpected cancel report: %s/%s", last.Status, last.ExecType)
	}
	if depth := s.Depth("AAPL"); len(depth.Bids) != 0 {
		t.Fatalf("order still resting after cancel: %+v", depth.Bids)
	}

	// a canceled order cannot be canceled again
	again := &model.CancelOrder{GatewayID: "g-3", OrigGatewayID: "g-1", Symbol: "AAPL"}
	if err := s.CancelOrder(ctx, again); err != errInvalidOrderStatus {
		t.Fatalf("want errInvalidOrderStatus, got %v", err)
	}
}

func TestCancelUnknownGatewayID(t *testing.T) {
	s, _ := newTestOMS(t)

	cancel := &model.CancelOrder{GatewayID: "g-2", OrigGatewayID: "missing", Symbol: "AAPL"}
	if err := s.CancelOrder(context.Background(), cancel); err != errGatewayIDNotFound {
		t.Fatalf("want errGatewayIDNotFound, got %v", err)
	}
}

func TestModifyOrderQuantity(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	modify := &model.ModifyOrder{
		GatewayID:     "g-2",
		OrigGatewayID: "g-1",
		Symbol:        "AAPL",
		NewPrice:      decimal.RequireFromString("100"),
		NewQuantity:   decimal.NewFromInt(25),
	}
	if err := s.ModifyOrder(ctx, modify); err != nil {
		t.Fatalf("ModifyOrder: %v", err)
	}

	last := gateway.reports[len(gateway.reports)-1]
	if last.Status != model.OrderStatusReplaced || !last.Quantity.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected modify report: %s qty %s", last.Status, last.Quantity)
	}
	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Quantity != 25 {
		t.Fatalf("unexpected depth after modify: %+v", depth.Bids)
	}
}

func TestModifyOrderPriceMove(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	modify := &model.ModifyOrder{
		GatewayID:     "g-2",
		OrigGatewayID: "g-1",
		Symbol:        "AAPL",
		NewPrice:      decimal.RequireFromString("101"),
		NewQuantity:   decimal.NewFromInt(10),
	}
	if err := s.ModifyOrder(ctx, modify); err != nil {
		t.Fatalf("ModifyOrder: %v", err)
	}

	last := gateway.reports[len(gateway.reports)-1]
	if last.OrderID == "O-1" {
		t.Fatal("price move must place a replacement with a new order ID")
	}
	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Price != "101" {
		t.Fatalf("unexpected depth after price move: %+v", depth.Bids)
	}

	// the replacement stays addressable through the latest gateway ID
	cancel := &model.CancelOrder{GatewayID: "g-3", OrigGatewayID: "g-2", Symbol: "AAPL"}
	if err := s.CancelOrder(ctx, cancel); err != nil {
		t.Fatalf("CancelOrder after modify: %v", err)
	}
	if depth := s.Depth("AAPL"); len(depth.Bids) != 0 {
		t.Fatalf("replacement still resting after cancel: %+v", depth.Bids)
	}
}

func TestModifyAfterPartialFill(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder buy: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-2", "AAPL", model.OrderSideSell, "100", 3)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}

	// re-affirming qty 10 with 3 executed leaves 7 open
	modify := &model.ModifyOrder{
		GatewayID:     "g-3",
		OrigGatewayID: "g-1",
		Symbol:        "AAPL",
		NewPrice:      decimal.RequireFromString("100"),
		NewQuantity:   decimal.NewFromInt(10),
	}
	if err := s.ModifyOrder(ctx, modify); err != nil {
		t.Fatalf("ModifyOrder: %v", err)
	}

	replaced := gateway.reports[len(gateway.reports)-1]
	if !replaced.LeavesQuantity.Equal(decimal.NewFromInt(7)) || !replaced.CumQuantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected replace report: cum %s leaves %s", replaced.CumQuantity, replaced.LeavesQuantity)
	}
	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Quantity != 7 {
		t.Fatalf("book must rest the open quantity only, got %+v", depth.Bids)
	}

	// a sell of 10 takes the 7 open and rests its own remainder
	if err := s.AddOrder(ctx, addOrder("g-4", "AAPL", model.OrderSideSell, "100", 10)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}

	var final model.Order
	for _, report := range gateway.reports {
		if report.Side == model.OrderSideBuy {
			final = report
		}
	}
	if final.Status != model.OrderStatusFilled {
		t.Fatalf("want buy filled, got %s", final.Status)
	}
	if !final.CumQuantity.Equal(decimal.NewFromInt(10)) || !final.LeavesQuantity.IsZero() {
		t.Fatalf("overfilled buy: cum %s leaves %s", final.CumQuantity, final.LeavesQuantity)
	}

	depth = s.Depth("AAPL")
	if len(depth.Bids) != 0 {
		t.Fatalf("buy still resting after full fill: %+v", depth.Bids)
	}
	if len(depth.Asks) != 1 || depth.Asks[0].Quantity != 3 {
		t.Fatalf("unexpected sell remainder: %+v", depth.Asks)
	}
}

func TestModifyBelowExecutedQuantityRejected(t *testing.T) {
	s, _ := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder buy: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-2", "AAPL", model.OrderSideSell, "100", 4)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}

	modify := &model.ModifyOrder{
		GatewayID:     "g-3",
		OrigGatewayID: "g-1",
		Symbol:        "AAPL",
		NewPrice:      decimal.RequireFromString("100"),
		NewQuantity:   decimal.NewFromInt(4),
	}
	if err := s.ModifyOrder(ctx, modify); err != errInvalidOrderQty {
		t.Fatalf("want errInvalidOrderQty, got %v", err)
	}
	// untouched by the rejected amend
	depth := s.Depth("AAPL")
	if len(depth.Bids) != 1 || depth.Bids[0].Quantity != 6 {
		t.Fatalf("unexpected depth after rejected modify: %+v", depth.Bids)
	}
}

func TestModifyOrderCrossesBook(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideSell, "101", 10)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}
	if err := s.AddOrder(ctx, addOrder("g-2", "AAPL", model.OrderSideBuy, "100", 10)); err != nil {
		t.Fatalf("AddOrder buy: %v", err)
	}

	modify := &model.ModifyOrder{
		GatewayID:     "g-3",
		OrigGatewayID: "g-2",
		Symbol:        "AAPL",
		NewPrice:      decimal.RequireFromString("101"),
		NewQuantity:   decimal.NewFromInt(10),
	}
	if err := s.ModifyOrder(ctx, modify); err != nil {
		t.Fatalf("ModifyOrder: %v", err)
	}

	last := gateway.reports[len(gateway.reports)-1]
	if last.Status != model.OrderStatusFilled {
		t.Fatalf("want replacement filled, got %s", last.Status)
	}
	// trade at the resting ask price
	if !last.LastPrice.Equal(decimal.NewFromInt(101)) {
		t.Fatalf("want trade at 101, got %s", last.LastPrice)
	}
	depth := s.Depth("AAPL")
	if len(depth.Bids) != 0 || len(depth.Asks) != 0 {
		t.Fatalf("book not empty after crossing modify: %+v", depth)
	}
}

func TestFillAndKillThroughOMS(t *testing.T) {
	s, gateway := newTestOMS(t)
	ctx := context.Background()

	if err := s.AddOrder(ctx, addOrder("g-1", "AAPL", model.OrderSideSell, "100", 30)); err != nil {
		t.Fatalf("AddOrder sell: %v", err)
	}
	fak := addOrder("g-2", "AAPL", model.OrderSideBuy, "100", 100)
	fak.Type = model.OrderTypeFillAndKill
	if err := s.AddOrder(ctx, fak); err != nil {
		t.Fatalf("AddOrder fak: %v", err)
	}

	// the killed remainder closes the order out
	last := gateway.reports[len(gateway.reports)-1]
	if last.Side != model.OrderSideBuy || last.Status != model.OrderStatusCanceled {
		t.Fatalf("unexpected last report: %+v", last)
	}
	if !last.CumQuantity.Equal(decimal.NewFromInt(30)) || !last.LeavesQuantity.IsZero() {
		t.Fatalf("unexpected fak close-out: cum %s leaves %s", last.CumQuantity, last.LeavesQuantity)
	}
	if depth := s.Depth("AAPL"); len(depth.Bids) != 0 {
		t.Fatalf("fill-and-kill remainder rested: %+v", depth.Bids)
	}
}
