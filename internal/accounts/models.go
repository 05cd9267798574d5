package accounts

import (
	"time"

	"gorm.io/gorm"
)

// ExchangeAccount links a user to one set of exchange API credentials.
// The key material is stored encrypted; use Database.ActiveCredentials
// to read it back in the clear.
type ExchangeAccount struct {
	gorm.Model `json:"-"`
	AccountID  string    `gorm:"uniqueIndex" json:"account_id"`
	UserID     string    `gorm:"index" json:"user_id"`
	Name       string    `json:"name"`
	Exchange   string    `json:"exchange"` // e.g. BINANCE
	APIKey     string    `json:"-"`
	SecretKey  string    `json:"-"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
