package matching

// PriceHeap implements heap.Interface over price ticks. Pushing a price that
// is already present is a no-op, so one heap entry stands for one level.
type PriceHeap struct {
	prices []int64
	less   func(i, j int64) bool
	index  map[int64]bool
}

func NewPriceHeap(less func(i, j int64) bool) *PriceHeap {
	return &PriceHeap{
		prices: []int64{},
		less:   less,
		index:  make(map[int64]bool),
	}
}

func (h PriceHeap) Len() int {
	return len(h.prices)
}

func (h PriceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}

func (h PriceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}

func (h *PriceHeap) Push(x any) {
	price := x.(int64)
	if !h.index[price] {
		h.index[price] = true
		h.prices = append(h.prices, price)
	}
}

func (h *PriceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.index, price)
	return price
}

func (h *PriceHeap) Peek() (int64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}
