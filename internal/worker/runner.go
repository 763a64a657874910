// Package worker runs background jobs with a bounded level of parallelism.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Runner executes named jobs in goroutines behind a weighted semaphore.
// Jobs are never cancelled mid-flight; shutdown waits for running jobs to
// finish.
type Runner struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewRunner creates a runner allowing at most maxParallel concurrent jobs.
func NewRunner(maxParallel int64, logger *zap.Logger) *Runner {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{sem: semaphore.NewWeighted(maxParallel), logger: logger}
}

// Go schedules fn. It blocks only while waiting for a semaphore slot; the
// job itself runs detached from the caller's context. Panics are recovered
// and logged so one bad job cannot take the process down.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	if err := r.sem.Acquire(context.Background(), 1); err != nil {
		r.logger.Error("failed to acquire worker slot", zap.String("job", name), zap.Error(err))
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("job panicked", zap.String("job", name), zap.Any("panic", rec))
			}
		}()

		if err := fn(context.Background()); err != nil {
			r.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		r.logger.Debug("job finished", zap.String("job", name))
	}()
}

// Wait blocks until all scheduled jobs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
