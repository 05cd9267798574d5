package exchange

import "time"

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type OrderType string

const (
	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
)

// Order is a request to trade on an exchange.
type Order struct {
	Symbol      string
	Side        OrderSide
	Type        OrderType
	Quantity    float64
	Price       float64 // limit orders only
	TimeInForce string  // limit orders only, defaults to GTC
}

// OrderResult is the exchange's acknowledgement of a placed order.
type OrderResult struct {
	OrderID            string
	Symbol             string
	Status             string // NEW, FILLED, PARTIALLY_FILLED, ...
	Price              float64
	OrigQty            float64
	ExecutedQty        float64
	CumulativeQuoteQty float64
	TransactTime       time.Time
}

// Balance is a single asset's holdings on the exchange.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
	Total  float64
}

// MarketConstraints are the per-symbol order limits an exchange
// enforces. Refetched per execution, never persisted.
type MarketConstraints struct {
	Symbol      string
	BaseAsset   string
	QuoteAsset  string
	MinNotional float64
	MinQty      float64
	StepSize    float64 // quantity granularity
	TickSize    float64 // price granularity
}

// Credentials are a user's API keys for one exchange.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// CredentialSource resolves per-user exchange credentials. Implemented
// by the accounts store.
type CredentialSource interface {
	ActiveCredentials(userID, exchange string) (Credentials, error)
}
