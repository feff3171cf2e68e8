package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms/repo"
	"github.com/joripage/matching-engine/pkg/oms/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	logging.InitGlobal(cfg.ServiceName, logging.INFO)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	db, err := postgres_wrapper.InitPostgres(cfg.OmsDB)
	if err != nil {
		zap.S().Fatalf("init db fail: %v", err)
	}
	w := worker.NewWorker(repo.NewRepo(db))

	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Fatalf("connect nats fail: %v", err)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			zap.S().Fatalf("init jetstream fail: %v", err)
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     cfg.Nats.Stream,
			Subjects: []string{cfg.Nats.Stream + ".*"},
		}); err != nil {
			zap.S().Warnf("add stream fail: %v", err)
		}

		go func() {
			if err := w.StartEventConsumer(ctx, js, cfg.Nats.EventSubject, cfg.Nats.DurableConsumer); err != nil {
				zap.S().Errorf("event consumer stopped: %v", err)
			}
		}()
	}

	if cfg.Kafka != nil {
		cg, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
			Brokers:  cfg.Kafka.Brokers,
			GroupID:  cfg.Kafka.GroupID,
			Topic:    cfg.Kafka.TradeTopic,
			DLQTopic: cfg.Kafka.DLQTopic,
		})
		if err != nil {
			zap.S().Fatalf("init trade consumer fail: %v", err)
		}
		defer cg.Close()

		go func() {
			if err := w.StartTradeConsumer(ctx, cg); err != nil {
				zap.S().Errorf("trade consumer stopped: %v", err)
			}
		}()
	}

	zap.S().Info("worker started")
	<-sigs
	zap.S().Info("shutting down...")
	cancel()
}
