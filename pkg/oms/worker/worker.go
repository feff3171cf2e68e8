package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/joripage/matching-engine/pkg/oms/repo"
)

const fetchBatch = 10

// Worker drains the order-event stream and the trade topic into postgres.
type Worker struct {
	orderEvent repo.IOrderEvent
	trade      repo.ITrade
}

func NewWorker(repo repo.IRepo) *Worker {
	return &Worker{
		orderEvent: repo.OrderEvent(),
		trade:      repo.Trade(),
	}
}

// StartEventConsumer pulls order events from a durable JetStream consumer.
// Messages that fail to persist are not acked and will be redelivered.
func (w *Worker) StartEventConsumer(ctx context.Context, js nats.JetStreamContext, subject, durable string) error {
	cons, err := js.PullSubscribe(subject, durable)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := cons.Fetch(fetchBatch, nats.MaxWait(5*time.Second))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if !errors.Is(err, nats.ErrTimeout) {
				zap.S().Warnw("fetch order events fail", "error", err)
			}
			continue
		}

		for _, msg := range msgs {
			var event model.OrderEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				zap.S().Errorw("unmarshal order event fail", "error", err)
				_ = msg.Ack()
				continue
			}
			if _, err := w.orderEvent.Create(ctx, &event); err != nil {
				zap.S().Errorw("persist order event fail", "error", err, "event_id", event.EventID)
				continue
			}
			_ = msg.Ack()
		}
	}
}

// StartTradeConsumer drains the trade topic into the trades table.
func (w *Worker) StartTradeConsumer(ctx context.Context, cg *kafkawrapper.ConsumerGroup) error {
	return cg.Run(ctx, func(ctx context.Context, msgs []kafkawrapper.Message) error {
		trades := make([]*model.Trade, 0, len(msgs))
		for _, msg := range msgs {
			var trade model.Trade
			if err := json.Unmarshal(msg.Value, &trade); err != nil {
				zap.S().Errorw("unmarshal trade fail", "error", err)
				continue
			}
			trades = append(trades, &trade)
		}
		if len(trades) == 0 {
			return nil
		}
		_, err := w.trade.BulkCreate(ctx, trades)
		return err
	})
}
