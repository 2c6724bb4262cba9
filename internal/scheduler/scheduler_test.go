// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestUntilNext(t *testing.T) {
	d := NewDaily(9, nil, zap.NewNop())

	// Before the hour: fires later today.
	d.now = func() time.Time {
		return time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, 3*time.Hour, d.untilNext())

	// After the hour: fires tomorrow.
	d.now = func() time.Time {
		return time.Date(2026, time.March, 10, 10, 30, 0, 0, time.UTC)
	}
	assert.Equal(t, 22*time.Hour+30*time.Minute, d.untilNext())

	// Exactly on the hour still lands in the future.
	d.now = func() time.Time {
		return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, 24*time.Hour, d.untilNext())
}

func TestRunExecutesImmediatelyAndStopsOnCancel(t *testing.T) {
	var runs atomic.Int64
	job := func(context.Context) error {
		runs.Add(1)
		return nil
	}

	d := NewDaily(9, job, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	assert.Equal(t, int64(1), runs.Load())
}
