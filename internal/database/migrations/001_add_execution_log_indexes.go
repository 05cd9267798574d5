package migrations

import "gorm.io/gorm"

// AddExecutionLogIndexes creates the composite indexes backing the
// newest-first log queries. AutoMigrate only creates the single-column
// indexes declared on the model.
func AddExecutionLogIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_execution_logs_user_executed ON execution_logs(user_id, executed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_execution_logs_strategy_executed ON execution_logs(strategy_id, executed_at DESC)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
