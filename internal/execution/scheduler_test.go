package execution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsPasses(t *testing.T) {
	f := setupCoordinator(t)
	f.addStrategy(t, "user-1", "BTCUSDT", 100)

	scheduler := NewScheduler(f.coordinator, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	// Give the ticker time to fire at least once.
	require.Eventually(t, func() bool {
		var count int64
		f.db.Model(&ExecutionLog{}).Count(&count)
		return count >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}

	// The hourly strategy executed exactly once across all ticks.
	logs := f.allLogs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, StatusSuccess, logs[0].Status)
}

func TestSchedulerSurvivesPassErrors(t *testing.T) {
	f := setupCoordinator(t)
	require.NoError(t, f.db.Migrator().DropTable("strategies"))

	scheduler := NewScheduler(f.coordinator, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	// Every tick fails at due-set resolution; the loop keeps going.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	scheduler := NewScheduler(nil, 0)
	assert.Equal(t, time.Minute, scheduler.interval)
}
