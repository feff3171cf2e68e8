package oms

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/matching"
)

const depthKeyPrefix = "book:depth:"

type DepthLevel struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Orders   int    `json:"orders"`
}

type DepthSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []DepthLevel `json:"bids"`
	Asks      []DepthLevel `json:"asks"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Depth returns the aggregated top of book for a symbol.
func (s *OMS) Depth(symbol string) *DepthSnapshot {
	sb := s.getOrCreateBook(symbol)

	sb.mu.Lock()
	bids := sb.book.BidLevels()
	asks := sb.book.AskLevels()
	sb.mu.Unlock()

	return &DepthSnapshot{
		Symbol:    symbol,
		Bids:      s.toDepthLevels(bids),
		Asks:      s.toDepthLevels(asks),
		UpdatedAt: time.Now(),
	}
}

func (s *OMS) toDepthLevels(levels []matching.LevelSnapshot) []DepthLevel {
	if len(levels) > s.cfg.DepthLevels {
		levels = levels[:s.cfg.DepthLevels]
	}
	out := make([]DepthLevel, 0, len(levels))
	for _, level := range levels {
		var qty int64
		for _, order := range level.Orders {
			qty += order.RemainingQty
		}
		out = append(out, DepthLevel{
			Price:    s.fromTicks(level.Price).String(),
			Quantity: qty,
			Orders:   len(level.Orders),
		})
	}
	return out
}

func (s *OMS) cacheDepth(ctx context.Context, sb *symbolBook) {
	if s.redisClient == nil {
		return
	}

	snapshot := s.Depth(sb.symbol)
	data, err := json.Marshal(snapshot)
	if err != nil {
		zap.S().Errorw("marshal depth snapshot fail", "error", err)
		return
	}
	if err := s.redisClient.Set(ctx, depthKeyPrefix+sb.symbol, data, 0).Err(); err != nil {
		zap.S().Warnw("cache depth snapshot fail", "error", err, "symbol", sb.symbol)
	}
}
