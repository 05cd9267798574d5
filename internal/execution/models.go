package execution

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// ExecutionLog is the audit trail of the engine. Exactly one entry is
// written per execution attempt, success or failure. Entries are
// append-only and never updated.
type ExecutionLog struct {
	gorm.Model `json:"-"`
	LogID      string    `gorm:"uniqueIndex" json:"log_id"`
	StrategyID string    `gorm:"index" json:"strategy_id"`
	UserID     string    `gorm:"index" json:"user_id"`
	Symbol     string    `json:"symbol"`
	Amount     float64   `json:"amount"` // requested notional
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"` // SUCCESS or FAILED
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}
