package oms

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/joripage/go_util/pkg/shardqueue"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/matching"
	eventstore "github.com/joripage/matching-engine/pkg/oms/event_store"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

const (
	numShards = 16
	queueSize = 1_000_000

	cleanInterval = 1 * time.Minute
)

type Config struct {
	// PriceTick is the smallest price increment; decimal prices must be
	// exact multiples of it.
	PriceTick decimal.Decimal

	// DepthLevels caps the per-side depth written to the snapshot cache.
	DepthLevels int

	EventSubject string
	TradeTopic   string
}

type OMS struct {
	cfg          *Config
	orderGateway OrderGateway
	eventstore   eventstore.EventStore

	books   map[string]*symbolBook
	booksMu sync.RWMutex

	orderIDMapping sync.Map
	queue          *shardqueue.Shardqueue
	stopCh         chan struct{}

	bookOpts      []matching.Option
	js            nats.JetStreamContext
	tradeProducer *kafkawrapper.Producer
	redisClient   *redis.Client
}

// symbolBook serializes every command for one symbol. The engine itself
// holds no locks, so all book access goes through mu.
type symbolBook struct {
	mu      sync.Mutex
	symbol  string
	book    *matching.OrderBook
	matches []matching.MatchResult
}

func (sb *symbolBook) drainMatches() []matching.MatchResult {
	out := sb.matches
	sb.matches = nil
	return out
}

type Option func(*OMS)

func WithJetStream(js nats.JetStreamContext) Option {
	return func(s *OMS) { s.js = js }
}

func WithTradeProducer(p *kafkawrapper.Producer) Option {
	return func(s *OMS) { s.tradeProducer = p }
}

func WithRedis(c *redis.Client) Option {
	return func(s *OMS) { s.redisClient = c }
}

func WithBookOptions(opts ...matching.Option) Option {
	return func(s *OMS) { s.bookOpts = append(s.bookOpts, opts...) }
}

func NewOMS(cfg *Config, orderGateway OrderGateway, opts ...Option) *OMS {
	if cfg.PriceTick.IsZero() {
		cfg.PriceTick = decimal.New(1, -2)
	}
	if cfg.DepthLevels <= 0 {
		cfg.DepthLevels = 10
	}
	if cfg.EventSubject == "" {
		cfg.EventSubject = "ORDERS.events"
	}
	if cfg.TradeTopic == "" {
		cfg.TradeTopic = "trades"
	}

	s := &OMS{
		cfg:          cfg,
		orderGateway: orderGateway,
		eventstore:   eventstore.NewInMemoryEventStore(),
		books:        make(map[string]*symbolBook),
		queue:        shardqueue.NewShardQueue(numShards, queueSize),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *OMS) Start(ctx context.Context) error {
	s.queue.Start(func(msg interface{}) error {
		if err := s.handleQueued(ctx, msg); err != nil {
			zap.S().Warnw("command rejected", "error", err)
		}
		return nil
	})
	go s.startCleaner(cleanInterval)

	if s.orderGateway != nil {
		return s.orderGateway.Start(ctx)
	}
	return nil
}

func (s *OMS) Stop() {
	close(s.stopCh)
}

// SubmitAddOrder enqueues a new order; commands for the same symbol land
// on the same shard and run in arrival order.
func (s *OMS) SubmitAddOrder(addOrder *model.AddOrder) {
	s.queue.Shard(addOrder.Symbol, addOrder)
}

func (s *OMS) SubmitCancelOrder(cancelOrder *model.CancelOrder) {
	s.queue.Shard(cancelOrder.Symbol, cancelOrder)
}

func (s *OMS) SubmitModifyOrder(modifyOrder *model.ModifyOrder) {
	s.queue.Shard(modifyOrder.Symbol, modifyOrder)
}

func (s *OMS) handleQueued(ctx context.Context, msg interface{}) error {
	switch cmd := msg.(type) {
	case *model.AddOrder:
		return s.AddOrder(ctx, cmd)
	case *model.CancelOrder:
		return s.CancelOrder(ctx, cmd)
	case *model.ModifyOrder:
		return s.ModifyOrder(ctx, cmd)
	default:
		zap.S().Warnw("unknown command type", "command", msg)
		return nil
	}
}

func (s *OMS) AddOrder(ctx context.Context, addOrder *model.AddOrder) error {
	if s.eventstore.OrderIDByGateway(addOrder.GatewayID) != "" {
		return errDuplicateOrder
	}

	priceTicks, err := s.toTicks(addOrder.Price)
	if err != nil {
		return err
	}
	qty, err := toQty(addOrder.Quantity)
	if err != nil {
		return err
	}

	order := &model.Order{}
	order.UpdateAddOrder(addOrder)

	sb := s.getOrCreateBook(addOrder.Symbol)
	sb.mu.Lock()
	events, err := sb.book.ProcessCommand(matching.NewCommand{
		Type:  matching.OrderType(order.Type),
		Side:  matching.Side(order.Side),
		Price: priceTicks,
		Qty:   qty,
	})
	matches := sb.drainMatches()
	sb.mu.Unlock()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return errInvalidOrderQty
	}

	placed, ok := events[0].(matching.PlacedEvent)
	if !ok {
		return errOrderIDNotFound
	}
	order.UpdateAccepted(string(placed.ID))
	s.AddOrderToMap(order)
	s.eventstore.TrackGateway(order.OrderID, addOrder.GatewayID)

	s.reportOrder(ctx, order)
	s.processMatches(ctx, sb.symbol, matches)

	// a fill-and-kill remainder never rests; close the order out
	if order.Type == model.OrderTypeFillAndKill && order.LeavesQuantity.IsPositive() {
		order.Status = model.OrderStatusCanceled
		order.ExecType = model.ExecTypeCanceled
		order.LeavesQuantity = decimal.Zero
		s.reportOrder(ctx, order)
	}

	s.cacheDepth(ctx, sb)
	return nil
}

func (s *OMS) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	order, err := s.resolveOrder(cancelOrder.OrigGatewayID)
	if err != nil {
		return err
	}
	if !order.CanCancel() {
		return errInvalidOrderStatus
	}

	priceTicks, err := s.toTicks(order.Price)
	if err != nil {
		return err
	}

	sb := s.getOrCreateBook(order.Symbol)
	sb.mu.Lock()
	events, err := sb.book.ProcessCommand(matching.CancelCommand{
		ID:    matching.OrderID(order.OrderID),
		Side:  matching.Side(order.Side),
		Price: priceTicks,
	})
	sb.mu.Unlock()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		// already off the book, nothing to cancel
		return errOrderIDNotFound
	}

	order.UpdateCancelOrder(cancelOrder)
	s.eventstore.TrackGateway(order.OrderID, cancelOrder.GatewayID)

	s.reportOrder(ctx, order)
	s.cacheDepth(ctx, sb)
	return nil
}

// ModifyOrder amends a resting order. A quantity-only amend goes through
// the engine modify path; a price move cancels the old slot and places a
// replacement, which always loses time priority.
func (s *OMS) ModifyOrder(ctx context.Context, modifyOrder *model.ModifyOrder) error {
	order, err := s.resolveOrder(modifyOrder.OrigGatewayID)
	if err != nil {
		return err
	}
	if !order.CanModify() {
		return errInvalidOrderStatus
	}

	oldTicks, err := s.toTicks(order.Price)
	if err != nil {
		return err
	}
	newTicks, err := s.toTicks(modifyOrder.NewPrice)
	if err != nil {
		return err
	}
	newQty, err := toQty(modifyOrder.NewQuantity)
	if err != nil {
		return err
	}
	// cancel/replace semantics: the engine only ever holds the open part, so
	// the replacement re-enters NewQuantity minus what already executed
	openQty := newQty - order.CumQuantity.IntPart()
	if openQty <= 0 {
		return errInvalidOrderQty
	}

	orderType := modifyOrder.Type
	if orderType == "" {
		orderType = order.Type
	}

	sb := s.getOrCreateBook(order.Symbol)
	sb.mu.Lock()
	var events []matching.Event
	if newTicks == oldTicks {
		events, err = sb.book.ProcessCommand(matching.ModifyCommand{
			ID:    matching.OrderID(order.OrderID),
			Side:  matching.Side(order.Side),
			Price: oldTicks,
			Qty:   openQty,
			Type:  matching.OrderType(orderType),
		})
	} else {
		events, err = sb.book.ProcessCommand(matching.CancelCommand{
			ID:    matching.OrderID(order.OrderID),
			Side:  matching.Side(order.Side),
			Price: oldTicks,
		})
		if err == nil && len(events) > 0 {
			var placedEvents []matching.Event
			placedEvents, err = sb.book.ProcessCommand(matching.NewCommand{
				Type:  matching.OrderType(orderType),
				Side:  matching.Side(order.Side),
				Price: newTicks,
				Qty:   openQty,
			})
			events = append(events, placedEvents...)
		}
	}
	matches := sb.drainMatches()
	sb.mu.Unlock()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return errOrderIDNotFound
	}

	order.UpdateModifyOrder(modifyOrder)
	order.Type = orderType

	// the replacement rests under a fresh engine ID; rehome the mapping and
	// the gateway chain so earlier gateway ids keep resolving
	for _, event := range events {
		if placed, ok := event.(matching.PlacedEvent); ok {
			oldOrderID := order.OrderID
			s.DeleteOrderByOrderID(oldOrderID)
			order.OrderID = string(placed.ID)
			s.AddOrderToMap(order)
			s.eventstore.RelinkOrder(oldOrderID, order.OrderID)
			break
		}
	}
	s.eventstore.TrackGateway(order.OrderID, modifyOrder.GatewayID)

	s.reportOrder(ctx, order)
	s.processMatches(ctx, sb.symbol, matches)
	s.cacheDepth(ctx, sb)
	return nil
}

func (s *OMS) resolveOrder(origGatewayID string) (*model.Order, error) {
	orderID := s.eventstore.OrderIDByGateway(origGatewayID)
	if orderID == "" {
		return nil, errGatewayIDNotFound
	}
	return s.GetOrderByOrderID(orderID)
}

func (s *OMS) processMatches(ctx context.Context, symbol string, results []matching.MatchResult) {
	for _, result := range results {
		price := s.fromTicks(result.Price)
		qty := decimal.NewFromInt(result.Qty)

		for _, orderID := range []matching.OrderID{result.BuyOrderID, result.SellOrderID} {
			order, err := s.GetOrderByOrderID(string(orderID))
			if err != nil {
				zap.S().Warnw("match for unknown order", "order_id", orderID)
				continue
			}
			order.ApplyFill(qty, price)
			s.reportOrder(ctx, order)
		}

		trade := model.NewTrade(symbol, string(result.BuyOrderID), string(result.SellOrderID), price, qty, result.Timestamp)
		s.publishTrade(ctx, trade)
	}
}

func (s *OMS) reportOrder(ctx context.Context, order *model.Order) {
	snapshot := *order
	event := model.NewOrderEvent(snapshot, time.Now())
	s.eventstore.AddEvent(event)
	s.publishEvent(event)

	if s.orderGateway != nil {
		s.orderGateway.OnOrderReport(ctx, snapshot)
	}
}

func (s *OMS) publishEvent(event *model.OrderEvent) {
	if s.js == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorw("marshal order event fail", "error", err)
		return
	}
	if _, err := s.js.Publish(s.cfg.EventSubject, data); err != nil {
		zap.S().Errorw("publish order event fail", "error", err)
	}
}

func (s *OMS) publishTrade(ctx context.Context, trade *model.Trade) {
	if s.tradeProducer == nil {
		return
	}
	if err := s.tradeProducer.PublishJSON(ctx, s.cfg.TradeTopic, trade.Symbol, trade, nil); err != nil {
		zap.S().Errorw("publish trade fail", "error", err, "trade_id", trade.TradeID)
	}
}

func (s *OMS) getOrCreateBook(symbol string) *symbolBook {
	s.booksMu.RLock()
	sb, ok := s.books[symbol]
	s.booksMu.RUnlock()
	if ok {
		return sb
	}

	s.booksMu.Lock()
	defer s.booksMu.Unlock()
	if sb, ok = s.books[symbol]; ok {
		return sb
	}
	sb = &symbolBook{
		symbol: symbol,
		book:   matching.NewOrderBook(s.bookOpts...),
	}
	sb.book.RegisterMatchCallback(func(m matching.MatchResult) {
		sb.matches = append(sb.matches, m)
	})
	s.books[symbol] = sb
	return sb
}

func (s *OMS) toTicks(price decimal.Decimal) (int64, error) {
	ratio := price.Div(s.cfg.PriceTick)
	if !ratio.IsInteger() {
		return 0, errInvalidOrderPrice
	}
	return ratio.IntPart(), nil
}

func (s *OMS) fromTicks(ticks int64) decimal.Decimal {
	return s.cfg.PriceTick.Mul(decimal.NewFromInt(ticks))
}

func toQty(quantity decimal.Decimal) (int64, error) {
	if !quantity.IsInteger() || !quantity.IsPositive() {
		return 0, errInvalidOrderQty
	}
	return quantity.IntPart(), nil
}
