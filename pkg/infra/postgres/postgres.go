package postgres_wrapper

import (
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/lib/pq" // nolint
	"go.uber.org/zap"
	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type PostgresConfig struct {
	DataSource                 string          `yaml:"data_source"`
	MaxOpenConns               int             `yaml:"max_open_conns"`
	MaxIdleConns               int             `yaml:"max_idle_conns"`
	ConnMaxLifeTimeMiliseconds int64           `yaml:"conn_max_life_time_ms"`
	MigrationConnURL           string          `yaml:"migration_conn_url"`
	SlaveSources               []string        `yaml:"slave_sources"`
	LogLevel                   logger.LogLevel `yaml:"log_level"`
	Location                   string          `yaml:"location"`
}

// InitPostgres opens the primary connection, registers read replicas and
// applies pool settings. The open is retried with exponential backoff so the
// process survives a database that comes up after it does.
func InitPostgres(cfg *PostgresConfig) (*gorm.DB, error) {
	var db *gorm.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = open(cfg)
		if err != nil {
			zap.S().Warnf("connect postgres fail, retrying: %v", err)
		}
		return err
	}, backoff.NewExponentialBackOff())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Debugf("get DB instance fail: %v", err)
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeTimeMiliseconds) * time.Millisecond)

	return db, nil
}

func open(cfg *PostgresConfig) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      cfg.LogLevel,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(pg.Open(cfg.DataSource), &gorm.Config{
		Logger: newLogger,
		NowFunc: func() time.Time {
			loc, _ := time.LoadLocation(cfg.Location)
			return time.Now().In(loc)
		},
	})
	if err != nil {
		return nil, err
	}

	if len(cfg.SlaveSources) > 0 {
		var repl []gorm.Dialector
		for _, s := range cfg.SlaveSources {
			repl = append(repl, pg.Open(s))
		}
		zap.S().Debugf("register %d postgres replicas", len(repl))
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: repl,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			zap.S().Debugf("init postgres replicas fail: %+v", err)
			return nil, err
		}
	}

	return db, nil
}
