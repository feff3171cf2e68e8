package infra

import (
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// IMigrateTool applies schema migrations.
type IMigrateTool interface {
	// Migrate from current version to latest version.
	Migrate(source string, connStr string)
}

type migrateTool struct{}

var once sync.Once         // nolint
var mutex = &sync.Mutex{}  // nolint
var singleton IMigrateTool // nolint

// GetMigrateTool get singleton instance for migrate tool
func GetMigrateTool() IMigrateTool { // nolint
	once.Do(func() {
		singleton = &migrateTool{}
	})
	return singleton
}

// Migrate execute migration in serialize.
func (mt *migrateTool) Migrate(source string, connStr string) {
	mutex.Lock()
	defer mutex.Unlock()

	zap.S().Info("migrating...")

	mg, err := migrate.New(source, connStr)
	if err != nil {
		zap.S().Errorf("create new migration fail: %v", err)
		panic(err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		panic(err)
	}

	// a dirty version means a previous run died mid-migration; step back one
	// so the failed migration reruns
	if dirty {
		mg.Force(int(version) - 1) // nolint
	}

	err = mg.Up()
	if err != nil && err != migrate.ErrNoChange {
		panic(err)
	}

	zap.S().Info("migration done")
}
