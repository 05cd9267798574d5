package database

import (
	"fmt"

	"github.com/ksred/dca-engine/internal/accounts"
	"github.com/ksred/dca-engine/internal/database/migrations"
	"github.com/ksred/dca-engine/internal/execution"
	"github.com/ksred/dca-engine/internal/strategy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&strategy.Strategy{},
		&execution.ExecutionLog{},
		&accounts.ExchangeAccount{},
	)
	if err != nil {
		return nil, err
	}

	if err := migrations.AddExecutionLogIndexes(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
