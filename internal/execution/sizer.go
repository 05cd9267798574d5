package execution

import (
	"errors"
	"fmt"

	"github.com/ksred/dca-engine/internal/exchange"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice         = errors.New("price must be greater than 0")
	ErrInsufficientQuantity = errors.New("quantity below exchange minimum")
	ErrInsufficientNotional = errors.New("order notional below exchange minimum")
)

// SizeQuantity converts a notional amount into an order quantity that
// satisfies the symbol's market constraints. The raw quantity is
// quantized down to the step size, never up, so an order can never
// spend more than the requested amount. A zero step size means the
// exchange reports no lot granularity and the raw quantity passes
// through unquantized.
func SizeQuantity(amount, price float64, constraints exchange.MarketConstraints) (float64, error) {
	if price <= 0 {
		return 0, ErrInvalidPrice
	}

	quantity := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(price))

	if constraints.StepSize > 0 {
		step := decimal.NewFromFloat(constraints.StepSize)
		quantity = quantity.Div(step).Floor().Mul(step)
	}

	if quantity.LessThan(decimal.NewFromFloat(constraints.MinQty)) {
		return 0, fmt.Errorf("%w: quantity %s is less than minimum quantity %v",
			ErrInsufficientQuantity, quantity, constraints.MinQty)
	}

	notional := quantity.Mul(decimal.NewFromFloat(price))
	if notional.LessThan(decimal.NewFromFloat(constraints.MinNotional)) {
		return 0, fmt.Errorf("%w: notional %s is less than minimum notional %v",
			ErrInsufficientNotional, notional, constraints.MinNotional)
	}

	result, _ := quantity.Float64()
	return result, nil
}
