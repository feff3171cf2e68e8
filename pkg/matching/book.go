package matching

import (
	"fmt"
	"time"
)

// OrderBook matches incoming orders against resting orders under strict
// price-time priority: the best opposing level matches first, and within a
// level the oldest order matches first. Each command runs to quiescence
// before the next is accepted.
//
// The book is single-writer by design. It holds no locks and performs no
// I/O; a caller that needs concurrency must serialize commands into one
// consumer before they reach the book.
type OrderBook struct {
	bids *bookSide
	asks *bookSide

	commands []Command
	events   []Event

	callbacks []func(MatchResult)

	ids   IDGenerator
	clock Clock
}

func NewOrderBook(opts ...Option) *OrderBook {
	b := &OrderBook{
		bids:  newBidSide(),
		asks:  newAskSide(),
		ids:   uuidGenerator{},
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterMatchCallback adds a callback invoked once per match step with the
// buy/sell pair, price and quantity. Callbacks supplement the event log, they
// never replace it.
func (b *OrderBook) RegisterMatchCallback(fn func(MatchResult)) {
	b.callbacks = append(b.callbacks, fn)
}

// ProcessCommand runs one command to quiescence and returns the events it
// appended to the log. Malformed commands (non-positive price, unknown
// side or type, negative quantity) are rejected with an error before any
// state changes. A zero-quantity new, or a cancel or modify that resolves to
// nothing, returns no events and no error.
func (b *OrderBook) ProcessCommand(cmd Command) ([]Event, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	mark := len(b.events)
	b.commands = append(b.commands, cmd)

	switch c := cmd.(type) {
	case NewCommand:
		if c.Qty == 0 {
			break
		}
		now := b.clock.Now()
		order := &Order{
			ID:           b.ids.NextID(),
			Type:         c.Type,
			Side:         c.Side,
			Price:        c.Price,
			InitialQty:   c.Qty,
			RemainingQty: c.Qty,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		b.emit(PlacedEvent{
			ID:        order.ID,
			Side:      order.Side,
			Type:      order.Type,
			Price:     order.Price,
			Timestamp: now,
		})
		b.place(order)
	case CancelCommand:
		b.cancel(c.ID, c.Side, c.Price)
	case ModifyCommand:
		b.modify(c)
	}

	return append([]Event(nil), b.events[mark:]...), nil
}

// PlaceOrder runs an already-constructed order through matching, bypassing
// the command log and the Placed event. It exists for bulk loading and
// benchmarks; ProcessCommand is the normal entry.
func (b *OrderBook) PlaceOrder(order *Order) {
	if order == nil || order.RemainingQty == 0 {
		return
	}
	b.place(order)
}

// NewOrder builds an order with id and timestamps from the book's suppliers,
// without placing it.
func (b *OrderBook) NewOrder(typ OrderType, side Side, price, qty int64) *Order {
	now := b.clock.Now()
	return &Order{
		ID:           b.ids.NextID(),
		Type:         typ,
		Side:         side,
		Price:        price,
		InitialQty:   qty,
		RemainingQty: qty,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func validateCommand(cmd Command) error {
	switch c := cmd.(type) {
	case NewCommand:
		return validateOrderFields(c.Type, c.Side, c.Price, c.Qty)
	case CancelCommand:
		if c.Side != BUY && c.Side != SELL {
			return ErrInvalidSide
		}
		if c.Price <= 0 {
			return ErrInvalidPrice
		}
		return nil
	case ModifyCommand:
		return validateOrderFields(c.Type, c.Side, c.Price, c.Qty)
	default:
		return fmt.Errorf("unknown command type %T", cmd)
	}
}

func validateOrderFields(typ OrderType, side Side, price, qty int64) error {
	if side != BUY && side != SELL {
		return ErrInvalidSide
	}
	if typ != GoodTilCancel && typ != FillAndKill {
		return ErrInvalidOrderType
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if qty < 0 {
		return ErrInvalidQty
	}
	return nil
}

func (b *OrderBook) cancel(id OrderID, side Side, price int64) {
	s := b.sideFor(side)
	lev := s.level(price)
	if lev == nil {
		return
	}
	if lev.removeByID(id) {
		b.emit(CanceledEvent{ID: id})
	}
	s.removeIfEmpty(price)
}

func (b *OrderBook) modify(c ModifyCommand) {
	lev := b.sideFor(c.Side).level(c.Price)
	if lev == nil || lev.findByID(c.ID) < 0 {
		return
	}
	// cancel-then-new; both legs log their own commands and events.
	_, _ = b.ProcessCommand(CancelCommand{ID: c.ID, Side: c.Side, Price: c.Price})
	_, _ = b.ProcessCommand(NewCommand{Type: c.Type, Side: c.Side, Price: c.Price, Qty: c.Qty})
}

// place matches the order against the opposing side until it is consumed or
// can no longer cross, then rests the remainder (GTC) or discards it (FAK).
// Recursion depth is bounded by the number of opposing price levels.
func (b *OrderBook) place(order *Order) {
	if order.RemainingQty == 0 {
		return
	}

	counter := b.counterSideFor(order.Side)
	lev := counter.best()
	if lev == nil || !crosses(order, lev.Price) {
		if order.Type == FillAndKill {
			return // never rests; the remainder is discarded
		}
		b.sideFor(order.Side).upsert(order)
		return
	}

	resting := lev.front()
	now := b.clock.Now()

	switch {
	case order.RemainingQty < resting.RemainingQty:
		// resting order absorbs the incoming order and stays at the front
		qty := order.RemainingQty
		b.mustFill(resting, qty, now)
		b.mustFill(order, qty, now)
		b.emit(PartiallyFilledEvent{ID: resting.ID, Price: lev.Price, Qty: qty, Timestamp: now})
		b.emit(FilledEvent{ID: order.ID, Price: lev.Price, Timestamp: now})
		b.notifyMatch(order, resting, lev.Price, qty, now)

	case order.RemainingQty == resting.RemainingQty:
		qty := resting.RemainingQty
		lev.popFront()
		counter.removeIfEmpty(lev.Price)
		b.mustFill(resting, qty, now)
		b.mustFill(order, qty, now)
		b.emit(FilledEvent{ID: resting.ID, Price: lev.Price, Timestamp: now})
		b.emit(FilledEvent{ID: order.ID, Price: lev.Price, Timestamp: now})
		b.notifyMatch(order, resting, lev.Price, qty, now)

	default:
		// incoming is larger: consume the resting head and keep matching
		qty := resting.RemainingQty
		lev.popFront()
		counter.removeIfEmpty(lev.Price)
		b.mustFill(resting, qty, now)
		b.mustFill(order, qty, now)
		b.emit(PartiallyFilledEvent{ID: order.ID, Price: lev.Price, Qty: qty, Timestamp: now})
		b.emit(FilledEvent{ID: resting.ID, Price: lev.Price, Timestamp: now})
		b.notifyMatch(order, resting, lev.Price, qty, now)
		b.place(order)
	}
}

// mustFill treats an over-quantity fill as a corrupted book, not a
// recoverable error.
func (b *OrderBook) mustFill(o *Order, qty int64, now time.Time) {
	if err := o.Fill(qty, now); err != nil {
		panic(fmt.Sprintf("matching: fill %d on order %s with %d remaining: %v",
			qty, o.ID, o.RemainingQty, err))
	}
}

func (b *OrderBook) notifyMatch(incoming, resting *Order, price, qty int64, ts time.Time) {
	if len(b.callbacks) == 0 {
		return
	}
	m := MatchResult{Price: price, Qty: qty, Timestamp: ts}
	if incoming.Side == BUY {
		m.BuyOrderID, m.SellOrderID = incoming.ID, resting.ID
	} else {
		m.BuyOrderID, m.SellOrderID = resting.ID, incoming.ID
	}
	for _, cb := range b.callbacks {
		cb(m)
	}
}

func crosses(order *Order, counterPrice int64) bool {
	if order.Side == BUY {
		return order.Price >= counterPrice
	}
	return order.Price <= counterPrice
}

func (b *OrderBook) sideFor(side Side) *bookSide {
	if side == BUY {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) counterSideFor(side Side) *bookSide {
	if side == BUY {
		return b.asks
	}
	return b.bids
}

func (b *OrderBook) emit(ev Event) {
	b.events = append(b.events, ev)
}

// Events returns a copy of the append-only event log.
func (b *OrderBook) Events() []Event {
	return append([]Event(nil), b.events...)
}

// Commands returns a copy of the processed command log.
func (b *OrderBook) Commands() []Command {
	return append([]Command(nil), b.commands...)
}

// BidLevels returns the resting bid levels, highest price first.
func (b *OrderBook) BidLevels() []LevelSnapshot {
	return b.bids.snapshot()
}

// AskLevels returns the resting ask levels, lowest price first.
func (b *OrderBook) AskLevels() []LevelSnapshot {
	return b.asks.snapshot()
}

// BestBid returns the highest resting bid price, false when bids are empty.
func (b *OrderBook) BestBid() (int64, bool) {
	if lev := b.bids.best(); lev != nil {
		return lev.Price, true
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price, false when asks are empty.
func (b *OrderBook) BestAsk() (int64, bool) {
	if lev := b.asks.best(); lev != nil {
		return lev.Price, true
	}
	return 0, false
}
