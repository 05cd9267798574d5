package execution

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ksred/dca-engine/internal/exchange"
	"github.com/ksred/dca-engine/internal/pricing"
	"github.com/ksred/dca-engine/internal/strategy"
	"github.com/rs/zerolog/log"
)

// ErrPassInProgress is returned when a pass is requested while a
// previous one is still running. Callers skip and try again later;
// passes never overlap within one process.
var ErrPassInProgress = errors.New("execution pass already in progress")

// PassResult summarizes one execution pass.
type PassResult struct {
	Due       int `json:"due"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Coordinator runs execution passes: it resolves the due strategies
// and executes them sequentially, isolating per-strategy failures so
// one bad strategy never aborts the pass.
type Coordinator struct {
	resolver   *strategy.Resolver
	strategies *strategy.Database
	logs       *Database
	oracle     *pricing.Oracle
	gateway    exchange.Gateway

	running atomic.Bool
}

func NewCoordinator(
	resolver *strategy.Resolver,
	strategies *strategy.Database,
	logs *Database,
	oracle *pricing.Oracle,
	gateway exchange.Gateway,
) *Coordinator {
	return &Coordinator{
		resolver:   resolver,
		strategies: strategies,
		logs:       logs,
		oracle:     oracle,
		gateway:    gateway,
	}
}

// RunPass executes every due strategy once. It returns an error only
// when the pass itself could not run (due-set resolution failed, or a
// pass is already in flight); individual strategy failures are
// recorded in the execution log and counted in the result.
func (c *Coordinator) RunPass(ctx context.Context) (PassResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return PassResult{}, ErrPassInProgress
	}
	defer c.running.Store(false)

	logger := log.With().Str("component", "execution_coordinator").Logger()

	now := time.Now()
	due, err := c.resolver.DueSet(now)
	if err != nil {
		return PassResult{}, fmt.Errorf("failed to resolve due strategies: %w", err)
	}

	result := PassResult{Due: len(due)}
	if len(due) == 0 {
		logger.Debug().Msg("no strategies due for execution")
		return result, nil
	}

	logger.Info().Int("due_count", len(due)).Msg("executing due strategies")

	for i := range due {
		s := &due[i]
		entry, err := c.executeStrategy(ctx, s)
		if err != nil {
			result.Failed++
			logger.Warn().
				Err(err).
				Str("strategy_id", s.StrategyID).
				Str("symbol", s.Symbol).
				Msg("strategy execution failed")
		} else {
			result.Succeeded++
			logger.Info().
				Str("strategy_id", s.StrategyID).
				Str("symbol", s.Symbol).
				Float64("price", entry.Price).
				Float64("quantity", entry.Quantity).
				Str("order_id", entry.OrderID).
				Msg("strategy executed")
		}

		// The log entry is the audit trail; it is written for every
		// attempt even when the attempt failed.
		if err := c.logs.Append(entry); err != nil {
			logger.Error().
				Err(err).
				Str("strategy_id", s.StrategyID).
				Msg("failed to append execution log")
		}
	}

	return result, nil
}

// executeStrategy runs one strategy end to end: price, sizing, order
// submission, state update. It always returns a log entry; the error
// is non-nil when the entry records a failure.
func (c *Coordinator) executeStrategy(ctx context.Context, s *strategy.Strategy) (*ExecutionLog, error) {
	quote, err := c.oracle.Price(ctx, s.Symbol)
	if err != nil {
		return c.failedEntry(s, err), err
	}

	constraints, err := c.gateway.MarketConstraints(ctx, s.Symbol)
	if err != nil {
		return c.failedEntry(s, err), err
	}

	quantity, err := SizeQuantity(s.Amount, quote.Price, constraints)
	if err != nil {
		return c.failedEntry(s, err), err
	}

	order := exchange.Order{
		Symbol:   s.Symbol,
		Side:     exchange.SideBuy,
		Type:     exchange.TypeMarket,
		Quantity: quantity,
	}

	placed, err := c.gateway.PlaceOrder(ctx, s.UserID, order)
	if err != nil {
		return c.failedEntry(s, err), err
	}

	// Only a successful execution advances lastExecuted. A failure
	// leaves the strategy due on the next tick, which is the engine's
	// retry mechanism.
	now := time.Now()
	if err := c.strategies.MarkExecuted(s.StrategyID, now); err != nil {
		return c.failedEntry(s, err), err
	}

	return &ExecutionLog{
		StrategyID: s.StrategyID,
		UserID:     s.UserID,
		Symbol:     s.Symbol,
		Amount:     s.Amount,
		Price:      quote.Price,
		Quantity:   quantity,
		OrderID:    placed.OrderID,
		Status:     StatusSuccess,
		ExecutedAt: now,
	}, nil
}

func (c *Coordinator) failedEntry(s *strategy.Strategy, cause error) *ExecutionLog {
	return &ExecutionLog{
		StrategyID: s.StrategyID,
		UserID:     s.UserID,
		Symbol:     s.Symbol,
		Amount:     s.Amount,
		Price:      0,
		Quantity:   0,
		OrderID:    "0",
		Status:     StatusFailed,
		Error:      cause.Error(),
		ExecutedAt: time.Now(),
	}
}
