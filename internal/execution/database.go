package execution

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultLogLimit = 50

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Append writes one execution log entry. Entries are immutable once
// created.
func (d *Database) Append(entry *ExecutionLog) error {
	entry.LogID = uuid.New().String()
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	return d.db.Create(entry).Error
}

// ListByStrategy returns a strategy's log entries for the given owner,
// newest first.
func (d *Database) ListByStrategy(strategyID, userID string, limit, offset int) ([]ExecutionLog, error) {
	var logs []ExecutionLog
	err := d.db.
		Where("strategy_id = ? AND user_id = ?", strategyID, userID).
		Order("executed_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ListByUser returns all of a user's log entries, newest first.
func (d *Database) ListByUser(userID string, limit, offset int) ([]ExecutionLog, error) {
	var logs []ExecutionLog
	err := d.db.
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLogLimit
	}
	return limit
}
