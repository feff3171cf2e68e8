package matching

// Option configures an OrderBook.
type Option func(*OrderBook)

// WithClock replaces the system clock, e.g. with a deterministic one in tests.
func WithClock(c Clock) Option {
	return func(b *OrderBook) { b.clock = c }
}

// WithIDGenerator replaces the default UUID id supplier.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *OrderBook) { b.ids = g }
}
