package execution

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler fires an execution pass on a fixed cadence. Pass errors
// are logged and never stop the loop. When a tick fires while the
// previous pass is still running, the tick is skipped and the overlap
// logged rather than running two passes concurrently.
type Scheduler struct {
	coordinator *Coordinator
	interval    time.Duration
}

func NewScheduler(coordinator *Coordinator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
	}
}

// Start runs the scheduling loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	logger := log.With().Str("component", "scheduler").Logger()
	logger.Info().Dur("interval", s.interval).Msg("starting execution scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down execution scheduler")
			return
		case <-ticker.C:
			result, err := s.coordinator.RunPass(ctx)
			switch {
			case errors.Is(err, ErrPassInProgress):
				logger.Warn().Msg("pass overlap, skipping tick")
			case err != nil:
				logger.Error().Err(err).Msg("execution pass failed")
			case result.Due > 0:
				logger.Info().
					Int("due", result.Due).
					Int("succeeded", result.Succeeded).
					Int("failed", result.Failed).
					Msg("execution pass completed")
			}
		}
	}
}
