package execution

import (
	"testing"

	"github.com/ksred/dca-engine/internal/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeQuantityAlreadyAligned(t *testing.T) {
	// 100 USDT at 50000 is exactly 0.002, already a multiple of the
	// step size, so no adjustment happens.
	qty, err := SizeQuantity(100, 50000, exchange.MarketConstraints{
		StepSize: 0.00001,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.002, qty)
}

func TestSizeQuantityQuantizesDown(t *testing.T) {
	// 10 / 3000 = 0.00333..., floor to step 0.0001 -> 0.0033.
	qty, err := SizeQuantity(10, 3000, exchange.MarketConstraints{
		StepSize: 0.0001,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0033, qty)

	// Never rounds up: the resulting notional stays at or below the
	// requested amount.
	assert.LessOrEqual(t, qty*3000, 10.0)
}

func TestSizeQuantityMinNotionalBoundary(t *testing.T) {
	constraints := exchange.MarketConstraints{
		StepSize:    0.0001,
		MinNotional: 10,
	}

	// Exactly at the minimum notional passes.
	qty, err := SizeQuantity(10, 50000, constraints)
	require.NoError(t, err)
	assert.Equal(t, 0.0002, qty)

	// Strictly below after quantization fails.
	constraints.MinNotional = 10.01
	_, err = SizeQuantity(10, 50000, constraints)
	assert.ErrorIs(t, err, ErrInsufficientNotional)
}

func TestSizeQuantityMinQuantity(t *testing.T) {
	_, err := SizeQuantity(10, 50000, exchange.MarketConstraints{
		StepSize: 0.0001,
		MinQty:   0.001,
	})
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
}

func TestSizeQuantityZeroStepPassthrough(t *testing.T) {
	// A zero step size means no lot granularity: the raw quantity
	// passes through unquantized.
	qty, err := SizeQuantity(10, 3, exchange.MarketConstraints{})
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3.0, qty, 1e-12)
}

func TestSizeQuantityInvalidPrice(t *testing.T) {
	_, err := SizeQuantity(100, 0, exchange.MarketConstraints{StepSize: 0.001})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = SizeQuantity(100, -1, exchange.MarketConstraints{StepSize: 0.001})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestSizeQuantityStepMultiple(t *testing.T) {
	cases := []struct {
		amount, price, step float64
	}{
		{100, 50000, 0.00001},
		{37.5, 1234.56, 0.001},
		{5, 7.77, 0.01},
		{250, 68123.45, 0.00001},
	}

	for _, tc := range cases {
		qty, err := SizeQuantity(tc.amount, tc.price, exchange.MarketConstraints{StepSize: tc.step})
		require.NoError(t, err)

		// The sized quantity is always an exact multiple of the step.
		remainder := decimal.NewFromFloat(qty).Mod(decimal.NewFromFloat(tc.step))
		assert.True(t, remainder.IsZero(),
			"quantity %v is not a multiple of step %v (remainder %s)", qty, tc.step, remainder)

		spend := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(tc.price))
		assert.True(t, spend.LessThanOrEqual(decimal.NewFromFloat(tc.amount)),
			"spend %s exceeds requested amount %v", spend, tc.amount)
	}
}
