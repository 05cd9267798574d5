package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ksred/dca-engine/internal/exchange"
	"gorm.io/gorm"
)

type Database struct {
	db    *gorm.DB
	codec *codec
}

// NewDatabase wraps the shared gorm connection with the credential
// codec. The encryption key must be 32 bytes.
func NewDatabase(db *gorm.DB, encryptionKey string) (*Database, error) {
	c, err := newCodec(encryptionKey)
	if err != nil {
		return nil, err
	}
	return &Database{db: db, codec: c}, nil
}

// Create encrypts the key material and persists the account. Accounts
// are created active.
func (d *Database) Create(account *ExchangeAccount) error {
	if account.UserID == "" {
		return errors.New("user ID is required")
	}
	if account.APIKey == "" || account.SecretKey == "" {
		return errors.New("API key and secret key are required")
	}

	apiKey, err := d.codec.encrypt(account.APIKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}
	secretKey, err := d.codec.encrypt(account.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret key: %w", err)
	}

	account.AccountID = uuid.New().String()
	account.Exchange = strings.ToUpper(account.Exchange)
	account.APIKey = apiKey
	account.SecretKey = secretKey
	account.IsActive = true
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	return d.db.Create(account).Error
}

// ActiveCredentials returns the decrypted credentials of the user's
// active account on the given exchange. Implements
// exchange.CredentialSource.
func (d *Database) ActiveCredentials(userID, exchangeName string) (exchange.Credentials, error) {
	var account ExchangeAccount
	err := d.db.
		Where("user_id = ? AND exchange = ? AND is_active = ?", userID, strings.ToUpper(exchangeName), true).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return exchange.Credentials{}, fmt.Errorf("%w: user %s on %s", exchange.ErrMissingAccount, userID, exchangeName)
		}
		return exchange.Credentials{}, err
	}

	apiKey, err := d.codec.decrypt(account.APIKey)
	if err != nil {
		return exchange.Credentials{}, fmt.Errorf("failed to decrypt API key: %w", err)
	}
	secretKey, err := d.codec.decrypt(account.SecretKey)
	if err != nil {
		return exchange.Credentials{}, fmt.Errorf("failed to decrypt secret key: %w", err)
	}

	return exchange.Credentials{APIKey: apiKey, SecretKey: secretKey}, nil
}

// SetActive toggles an account's active flag for the given owner.
func (d *Database) SetActive(accountID, userID string, active bool) error {
	return d.db.Model(&ExchangeAccount{}).
		Where("account_id = ? AND user_id = ?", accountID, userID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}
