package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Quote is a cached spot price.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Fetcher is the upstream price source. The exchange gateway
// satisfies it.
type Fetcher interface {
	TickerPrice(ctx context.Context, symbol string) (float64, error)
	TickerPrices(ctx context.Context) (map[string]float64, error)
}

// Oracle serves spot prices from an in-memory cache with a fixed TTL,
// fetching from upstream on miss or staleness. Safe for concurrent
// use. Concurrent misses for the same symbol are not coalesced; each
// fetches upstream independently.
type Oracle struct {
	fetcher Fetcher
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]Quote

	now func() time.Time
}

func NewOracle(fetcher Fetcher, ttl time.Duration) *Oracle {
	return &Oracle{
		fetcher: fetcher,
		ttl:     ttl,
		cache:   make(map[string]Quote),
		now:     time.Now,
	}
}

// Price returns the current price for one symbol, from cache when the
// cached quote is still within the TTL.
func (o *Oracle) Price(ctx context.Context, symbol string) (Quote, error) {
	if quote, ok := o.cached(symbol); ok {
		return quote, nil
	}

	price, err := o.fetcher.TickerPrice(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{Symbol: symbol, Price: price, Timestamp: o.now()}
	o.store(quote)
	return quote, nil
}

// Prices returns one quote per requested symbol. All stale or missing
// symbols are refreshed with a single upstream fetch. A symbol absent
// from both cache and fetch result degrades to a zero price, which is
// logged as a warning because a zero price is never tradeable.
func (o *Oracle) Prices(ctx context.Context, symbols []string) ([]Quote, error) {
	stale := 0
	for _, symbol := range symbols {
		if _, ok := o.cached(symbol); !ok {
			stale++
		}
	}

	if stale > 0 {
		all, err := o.fetcher.TickerPrices(ctx)
		if err != nil {
			return nil, err
		}

		now := o.now()
		for _, symbol := range symbols {
			if price, ok := all[symbol]; ok {
				o.store(Quote{Symbol: symbol, Price: price, Timestamp: now})
			}
		}
	}

	quotes := make([]Quote, 0, len(symbols))
	for _, symbol := range symbols {
		o.mu.RLock()
		quote, ok := o.cache[symbol]
		o.mu.RUnlock()
		if !ok {
			log.Warn().
				Str("component", "price_oracle").
				Str("symbol", symbol).
				Msg("symbol missing from cache and upstream, degrading to zero price")
			quote = Quote{Symbol: symbol}
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Invalidate drops one symbol from the cache.
func (o *Oracle) Invalidate(symbol string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cache, symbol)
}

// InvalidateAll drops the whole cache.
func (o *Oracle) InvalidateAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache = make(map[string]Quote)
}

// TTL returns the cache validity window.
func (o *Oracle) TTL() time.Duration {
	return o.ttl
}

func (o *Oracle) cached(symbol string) (Quote, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	quote, ok := o.cache[symbol]
	if !ok || o.now().Sub(quote.Timestamp) >= o.ttl {
		return Quote{}, false
	}
	return quote, true
}

func (o *Oracle) store(quote Quote) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache[quote.Symbol] = quote
}
