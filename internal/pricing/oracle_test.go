package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher counts upstream calls so tests can verify the cache is
// actually absorbing them.
type fakeFetcher struct {
	prices      map[string]float64
	singleCalls int
	batchCalls  int
	err         error
}

func (f *fakeFetcher) TickerPrice(_ context.Context, symbol string) (float64, error) {
	f.singleCalls++
	if f.err != nil {
		return 0, f.err
	}
	price, ok := f.prices[symbol]
	if !ok {
		return 0, errors.New("unknown symbol " + symbol)
	}
	return price, nil
}

func (f *fakeFetcher) TickerPrices(_ context.Context) (map[string]float64, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

func TestPriceCachedWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"BTCUSDT": 50000}}
	oracle := NewOracle(fetcher, 5*time.Second)

	first, err := oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, first.Price)

	second, err := oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	// Identical quote, single upstream fetch.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.singleCalls)
}

func TestPriceRefetchedAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"BTCUSDT": 50000}}
	oracle := NewOracle(fetcher, 5*time.Second)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	oracle.now = func() time.Time { return base }

	first, err := oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	// Past the TTL the cache entry is stale and a new fetch happens.
	fetcher.prices["BTCUSDT"] = 51000
	oracle.now = func() time.Time { return base.Add(5 * time.Second) }

	second, err := oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.singleCalls)
	assert.Equal(t, 51000.0, second.Price)
	assert.True(t, second.Timestamp.After(first.Timestamp))
}

func TestPricePropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("upstream down")
	oracle := NewOracle(&fakeFetcher{err: fetchErr}, 5*time.Second)

	_, err := oracle.Price(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, fetchErr)
}

func TestPricesBatchesStaleSymbols(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{
		"BTCUSDT": 50000,
		"ETHUSDT": 3000,
	}}
	oracle := NewOracle(fetcher, 5*time.Second)

	quotes, err := oracle.Prices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Both misses are served by one upstream fetch.
	assert.Equal(t, 1, fetcher.batchCalls)
	assert.Equal(t, 50000.0, quotes[0].Price)
	assert.Equal(t, 3000.0, quotes[1].Price)

	// Fresh entries are served from cache without another fetch.
	_, err = oracle.Prices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.batchCalls)
}

func TestPricesUnknownSymbolDegradesToZero(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"BTCUSDT": 50000}}
	oracle := NewOracle(fetcher, 5*time.Second)

	quotes, err := oracle.Prices(context.Background(), []string{"BTCUSDT", "NOPEUSDT"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, 50000.0, quotes[0].Price)
	assert.Equal(t, "NOPEUSDT", quotes[1].Symbol)
	assert.Zero(t, quotes[1].Price)
	assert.True(t, quotes[1].Timestamp.IsZero())
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"BTCUSDT": 50000}}
	oracle := NewOracle(fetcher, time.Hour)

	_, err := oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	oracle.Invalidate("BTCUSDT")

	_, err = oracle.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.singleCalls)
}
