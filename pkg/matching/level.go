package matching

import "github.com/gammazero/deque"

// Level is all resting orders at one price on one side, in arrival order.
// The queue is strict FIFO: the front order is the oldest and matches first.
type Level struct {
	Price  int64
	orders deque.Deque[*Order]
}

func newLevel(price int64) *Level {
	return &Level{Price: price}
}

func (l *Level) Len() int {
	return l.orders.Len()
}

func (l *Level) front() *Order {
	return l.orders.Front()
}

func (l *Level) push(o *Order) {
	l.orders.PushBack(o)
}

func (l *Level) popFront() *Order {
	return l.orders.PopFront()
}

// findByID returns the queue position of the order with the given id, or -1
// when no such order rests at this level.
func (l *Level) findByID(id OrderID) int {
	for i := 0; i < l.orders.Len(); i++ {
		if l.orders.At(i).ID == id {
			return i
		}
	}
	return -1
}

// removeByID reports whether an order with the given id was present and
// removed. Absence is not an error.
func (l *Level) removeByID(id OrderID) bool {
	pos := l.findByID(id)
	if pos < 0 {
		return false
	}
	l.orders.Remove(pos)
	return true
}

// Orders returns a copy of the queue in time priority order.
func (l *Level) Orders() []Order {
	out := make([]Order, 0, l.orders.Len())
	for i := 0; i < l.orders.Len(); i++ {
		out = append(out, *l.orders.At(i))
	}
	return out
}
