package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const Binance = "BINANCE"

// Gateway is the capability set the engine needs from an exchange.
// One implementation exists per exchange; adding one means
// implementing this interface and registering it in New.
type Gateway interface {
	Name() string

	// MarketConstraints fetches the symbol's order limits (public).
	MarketConstraints(ctx context.Context, symbol string) (MarketConstraints, error)

	// TickerPrice fetches the current spot price (public).
	TickerPrice(ctx context.Context, symbol string) (float64, error)

	// TickerPrices fetches spot prices for all symbols (public).
	TickerPrices(ctx context.Context) (map[string]float64, error)

	// Balance fetches a user's holdings for one asset (signed).
	Balance(ctx context.Context, userID, asset string) (Balance, error)

	// PlaceOrder submits an order on behalf of a user (signed).
	PlaceOrder(ctx context.Context, userID string, order Order) (OrderResult, error)
}

// Config carries the transport settings for a gateway.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New selects a gateway implementation by exchange name.
func New(name string, cfg Config, creds CredentialSource) (Gateway, error) {
	switch strings.ToUpper(name) {
	case Binance:
		return newBinance(cfg, creds), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExchange, name)
	}
}
