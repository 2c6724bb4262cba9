// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Daily runs a job once immediately and then every day at the given hour.
// It blocks until ctx is cancelled, so callers run it in its own goroutine.
type Daily struct {
	hour   int
	job    Job
	logger *zap.Logger

	now func() time.Time
}

func NewDaily(hour int, job Job, logger *zap.Logger) *Daily {
	return &Daily{
		hour:   hour,
		job:    job,
		logger: logger,
		now:    time.Now,
	}
}

func (d *Daily) Run(ctx context.Context) {
	d.logger.Info("scheduler started", zap.Int("hour", d.hour))

	// Catch-up run on startup: a restart must not silently skip a day.
	d.runJob(ctx)

	timer := time.NewTimer(d.untilNext())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("scheduler stopped")
			return
		case <-timer.C:
			d.runJob(ctx)
			timer.Reset(d.untilNext())
		}
	}
}

func (d *Daily) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := d.job(ctx); err != nil {
		d.logger.Error("scheduled job failed", zap.Error(err))
	}
}

// untilNext computes the wait to the next occurrence of the configured hour,
// always in the future so a run never double-fires.
func (d *Daily) untilNext() time.Duration {
	now := d.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
