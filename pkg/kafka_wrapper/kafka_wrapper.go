// Package kafkawrapper is a thin publish/consume layer over segmentio/kafka-go.
// Consumers receive batches; a batch that keeps failing after retries goes to
// the dead-letter topic so the partition is never blocked.
package kafkawrapper

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
	Headers   map[string]string
}

type ProducerConfig struct {
	Brokers      []string
	Balancer     kafka.Balancer
	BatchSize    int
	BatchBytes   int64
	BatchTimeout time.Duration
	RequiredAcks kafka.RequiredAcks
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.Hash{}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}

	return &Producer{w: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               cfg.Balancer,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           cfg.RequiredAcks,
		Async:                  true,
	}}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	var kh []kafka.Header
	for k, v := range headers {
		kh = append(kh, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: kh,
		Time:    time.Now(),
	})
}

func (p *Producer) PublishJSON(ctx context.Context, topic, key string, v any, headers map[string]string) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, topic, []byte(key), b, headers)
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers    []string
	GroupID    string
	Topic      string
	MaxRetries uint64
	DLQTopic   string

	BatchSize    int
	BatchTimeout time.Duration
}

type ConsumerGroup struct {
	r   *kafka.Reader
	cfg ConsumerConfig
	dlq *Producer
}

func NewConsumerGroup(cfg ConsumerConfig) (*ConsumerGroup, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no brokers configured")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})

	var dlq *Producer
	if cfg.DLQTopic != "" {
		dlq = NewProducer(ProducerConfig{Brokers: cfg.Brokers})
	}

	return &ConsumerGroup{r: r, cfg: cfg, dlq: dlq}, nil
}

func (cg *ConsumerGroup) Close() error {
	if cg == nil {
		return nil
	}
	if cg.dlq != nil {
		_ = cg.dlq.Close()
	}
	if cg.r != nil {
		return cg.r.Close()
	}
	return nil
}

// Run fetches messages, groups them into batches and hands each batch to the
// handler. A batch is retried with exponential backoff; once retries are
// exhausted it is shipped to the DLQ and committed so the group keeps moving.
func (cg *ConsumerGroup) Run(ctx context.Context, handler func(context.Context, []Message) error) error {
	if cg == nil || cg.r == nil {
		return errors.New("consumer not initialized")
	}

	for {
		batch, err := cg.fetchBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if len(batch) == 0 {
			continue
		}

		wrapped := make([]Message, len(batch))
		for i, m := range batch {
			wrapped[i] = wrapMessage(m)
		}

		bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cg.cfg.MaxRetries), ctx)
		err = backoff.Retry(func() error { return handler(ctx, wrapped) }, bo)
		if err != nil {
			zap.S().Errorw("batch handler fail", "error", err, "topic", cg.cfg.Topic, "size", len(batch))
			cg.toDLQ(ctx, batch)
		}
		if err := cg.r.CommitMessages(ctx, batch...); err != nil {
			zap.S().Warnw("commit fail", "error", err)
		}
	}
}

func (cg *ConsumerGroup) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	var batch []kafka.Message
	deadline := time.Now().Add(cg.cfg.BatchTimeout)

	for len(batch) < cg.cfg.BatchSize {
		fetchCtx, cancel := context.WithDeadline(ctx, deadline)
		m, err := cg.r.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				break // batch window closed
			}
			return batch, err
		}
		batch = append(batch, m)
	}
	return batch, nil
}

func (cg *ConsumerGroup) toDLQ(ctx context.Context, batch []kafka.Message) {
	if cg.dlq == nil {
		return
	}
	for _, m := range batch {
		if err := cg.dlq.Publish(ctx, cg.cfg.DLQTopic, m.Key, m.Value, headersToMap(m.Headers)); err != nil {
			zap.S().Errorw("publish to dlq fail", "error", err, "offset", m.Offset)
		}
	}
}

func wrapMessage(m kafka.Message) Message {
	return Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
		Headers:   headersToMap(m.Headers),
	}
}

func headersToMap(hs []kafka.Header) map[string]string {
	out := map[string]string{}
	for _, h := range hs {
		out[h.Key] = string(h.Value)
	}
	return out
}
