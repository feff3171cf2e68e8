package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/config"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

// logGateway reports order state to the log. It stands in until a real
// client-facing gateway is plugged in.
type logGateway struct{}

func (logGateway) Start(ctx context.Context) error { return nil }

func (logGateway) OnOrderReport(ctx context.Context, order model.Order) {
	zap.S().Infow("order report",
		"order_id", order.OrderID,
		"symbol", order.Symbol,
		"side", order.Side,
		"status", order.Status,
		"exec_type", order.ExecType,
		"leaves", order.LeavesQuantity,
		"cum", order.CumQuantity,
	)
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	logging.InitGlobal(cfg.ServiceName, logging.INFO)

	go func() {
		_ = http.ListenAndServe("localhost:6060", nil)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	omsCfg := &oms.Config{}
	var omsOpts []oms.Option

	if cfg.Matching != nil {
		if cfg.Matching.PriceTick != "" {
			omsCfg.PriceTick = decimal.RequireFromString(cfg.Matching.PriceTick)
		}
		omsCfg.DepthLevels = cfg.Matching.DepthLevels
	}

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
		omsCfg.EventSubject = cfg.Nats.EventSubject
		omsOpts = append(omsOpts, oms.WithJetStream(js))
	}

	if cfg.Kafka != nil {
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		})
		defer producer.Close()
		omsCfg.TradeTopic = cfg.Kafka.TradeTopic
		omsOpts = append(omsOpts, oms.WithTradeProducer(producer))
	}

	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis fail: %v", err)
		}
		omsOpts = append(omsOpts, oms.WithRedis(redisClient))
	}

	engine := oms.NewOMS(omsCfg, logGateway{}, omsOpts...)
	if err := engine.Start(ctx); err != nil {
		zap.S().Fatalf("start oms fail: %v", err)
	}
	zap.S().Info("matching engine started")

	<-sigs
	zap.S().Info("shutting down...")
	engine.Stop()
	cancel()
}
