package matching

import (
	"container/heap"
	"sort"
)

// bookSide holds one side's levels keyed by price, with a heap for best-price
// lookup. A price whose level was emptied and deleted may linger in the heap;
// best skips and discards such entries lazily. The levels map only ever holds
// non-empty levels.
type bookSide struct {
	levels map[int64]*Level
	prices *PriceHeap
}

func newBidSide() *bookSide {
	return &bookSide{
		levels: make(map[int64]*Level),
		prices: NewPriceHeap(func(i, j int64) bool { return i > j }), // max-heap
	}
}

func newAskSide() *bookSide {
	return &bookSide{
		levels: make(map[int64]*Level),
		prices: NewPriceHeap(func(i, j int64) bool { return i < j }), // min-heap
	}
}

// best returns the level at the side's priority extreme: highest price for
// bids, lowest for asks. It returns nil when the side is empty.
func (s *bookSide) best() *Level {
	for {
		price, ok := s.prices.Peek()
		if !ok {
			return nil
		}
		lev, ok := s.levels[price]
		if !ok || lev.Len() == 0 {
			heap.Pop(s.prices)
			delete(s.levels, price)
			continue
		}
		return lev
	}
}

func (s *bookSide) level(price int64) *Level {
	return s.levels[price]
}

// upsert appends the order to the level at its price, creating the level
// first if needed.
func (s *bookSide) upsert(o *Order) {
	lev, ok := s.levels[o.Price]
	if !ok {
		lev = newLevel(o.Price)
		s.levels[o.Price] = lev
		heap.Push(s.prices, o.Price)
	}
	lev.push(o)
}

// removeIfEmpty drops the level at price when it holds no orders. The heap
// entry stays behind for best to clean up.
func (s *bookSide) removeIfEmpty(price int64) {
	if lev, ok := s.levels[price]; ok && lev.Len() == 0 {
		delete(s.levels, price)
	}
}

func (s *bookSide) len() int {
	return len(s.levels)
}

// snapshot returns copies of the side's levels, best first.
func (s *bookSide) snapshot() []LevelSnapshot {
	out := make([]LevelSnapshot, 0, len(s.levels))
	for _, lev := range s.levels {
		out = append(out, LevelSnapshot{Price: lev.Price, Orders: lev.Orders()})
	}
	sort.Slice(out, func(i, j int) bool {
		return s.prices.less(out[i].Price, out[j].Price)
	})
	return out
}

// LevelSnapshot is a read-only copy of one price level.
type LevelSnapshot struct {
	Price  int64
	Orders []Order
}
