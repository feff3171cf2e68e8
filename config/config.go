package config

import (
	"os"

	postgres_wrapper "github.com/joripage/matching-engine/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type NatsConfig struct {
	URL             string `yaml:"url"`
	Stream          string `yaml:"stream"`
	EventSubject    string `yaml:"event_subject"`
	DurableConsumer string `yaml:"durable_consumer"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	TradeTopic string   `yaml:"trade_topic"`
	DLQTopic   string   `yaml:"dlq_topic"`
	GroupID    string   `yaml:"group_id"`
}

type MatchingConfig struct {
	Symbols     []string `yaml:"symbols"`
	PriceTick   string   `yaml:"price_tick"`
	DepthLevels int      `yaml:"depth_levels"`
}

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	OmsDB       *postgres_wrapper.PostgresConfig `yaml:"oms_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Nats        *NatsConfig                      `yaml:"nats"`
	Kafka       *KafkaConfig                     `yaml:"kafka"`
	Matching    *MatchingConfig                  `yaml:"matching"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
