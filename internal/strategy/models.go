package strategy

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserIDRequired  = errors.New("user ID is required")
	ErrNameRequired    = errors.New("strategy name is required")
	ErrSymbolRequired  = errors.New("symbol is required")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrInvalidInterval = errors.New("invalid interval")
)

// Strategy is a recurring fixed-notional buy of a single symbol.
type Strategy struct {
	gorm.Model   `json:"-"`
	StrategyID   string     `gorm:"uniqueIndex" json:"strategy_id"`
	UserID       string     `gorm:"index" json:"user_id"`
	Name         string     `json:"name"`
	Symbol       string     `json:"symbol"`
	Amount       float64    `json:"amount"` // quote currency spent per execution
	Interval     Interval   `json:"interval"`
	IsActive     bool       `json:"is_active"`
	StartDate    time.Time  `json:"start_date"`
	LastExecuted *time.Time `json:"last_executed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate checks the invariants enforced at creation time.
func (s *Strategy) Validate() error {
	if s.UserID == "" {
		return ErrUserIDRequired
	}
	if s.Name == "" {
		return ErrNameRequired
	}
	if s.Symbol == "" {
		return ErrSymbolRequired
	}
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !s.Interval.Valid() {
		return ErrInvalidInterval
	}
	return nil
}

// IsDue reports whether the strategy should execute at now.
// A strategy is due when it is active, has started, and either has
// never executed or its interval has fully elapsed since the last
// execution.
func (s *Strategy) IsDue(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.StartDate.After(now) {
		return false
	}
	if s.LastExecuted == nil {
		return true
	}
	return now.Sub(*s.LastExecuted) >= s.Interval.Duration()
}
