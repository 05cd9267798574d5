package strategy

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Create validates and persists a new strategy. Strategies are created
// active unless explicitly disabled by the caller.
func (d *Database) Create(s *Strategy) error {
	if err := s.Validate(); err != nil {
		return err
	}

	s.StrategyID = uuid.New().String()
	if s.StartDate.IsZero() {
		s.StartDate = time.Now()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()

	return d.db.Create(s).Error
}

func (d *Database) GetByStrategyID(strategyID string) (*Strategy, error) {
	var s Strategy
	if err := d.db.Where("strategy_id = ?", strategyID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (d *Database) GetByUserID(userID string) ([]Strategy, error) {
	var strategies []Strategy
	if err := d.db.Where("user_id = ?", userID).Find(&strategies).Error; err != nil {
		return nil, err
	}
	return strategies, nil
}

// ActiveStarted returns every active strategy whose start date has
// passed, in store order. The interval arithmetic that decides actual
// dueness runs in the resolver, where the fixed durations live.
func (d *Database) ActiveStarted(now time.Time) ([]Strategy, error) {
	var strategies []Strategy
	err := d.db.
		Where("is_active = ? AND start_date <= ?", true, now).
		Find(&strategies).Error
	if err != nil {
		return nil, err
	}
	return strategies, nil
}

// MarkExecuted records a successful execution. Only the coordinator
// calls this, and only after the exchange accepted the order.
func (d *Database) MarkExecuted(strategyID string, executedAt time.Time) error {
	return d.db.Model(&Strategy{}).
		Where("strategy_id = ?", strategyID).
		Updates(map[string]interface{}{
			"last_executed": executedAt,
			"updated_at":    time.Now(),
		}).Error
}

// SetActive toggles a strategy's active flag for the given owner.
func (d *Database) SetActive(strategyID, userID string, active bool) error {
	return d.db.Model(&Strategy{}).
		Where("strategy_id = ? AND user_id = ?", strategyID, userID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}
