package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the engine.
// Values are read from the environment; a local .env file is loaded
// first when present so development setups don't need exported vars.
type Config struct {
	Port         string
	DatabasePath string

	// Shared secret checked against the X-API-Key header on the
	// bot trigger endpoint.
	BotAPIKey string

	// Key for encrypting exchange credentials at rest. Must be 32
	// bytes for AES-256.
	EncryptionKey string

	BinanceBaseURL string

	SchedulerInterval time.Duration
	PriceCacheTTL     time.Duration
	ExchangeTimeout   time.Duration
}

const (
	defaultPort           = "8080"
	defaultDatabasePath   = "dca.db"
	defaultBinanceBaseURL = "https://testnet.binance.vision/api"

	defaultSchedulerInterval = time.Minute
	defaultPriceCacheTTL     = 5 * time.Second
	defaultExchangeTimeout   = 10 * time.Second
)

// Load builds a Config from the environment.
func Load() Config {
	// Ignore the error: a missing .env simply means the environment
	// is already populated.
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", defaultPort),
		DatabasePath:      getEnv("DATABASE_PATH", defaultDatabasePath),
		BotAPIKey:         getEnv("BOT_API_KEY", ""),
		EncryptionKey:     getEnv("ENCRYPTION_KEY", ""),
		BinanceBaseURL:    getEnv("BINANCE_API_URL", defaultBinanceBaseURL),
		SchedulerInterval: getDuration("SCHEDULER_INTERVAL_SECONDS", defaultSchedulerInterval),
		PriceCacheTTL:     getDuration("PRICE_CACHE_TTL_SECONDS", defaultPriceCacheTTL),
		ExchangeTimeout:   getDuration("EXCHANGE_TIMEOUT_SECONDS", defaultExchangeTimeout),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
