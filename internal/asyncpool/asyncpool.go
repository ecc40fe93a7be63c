// Package asyncpool bounds concurrent offload work (autoset passes,
// melody analysis, fixture generation) behind a weighted semaphore so a
// burst of zone entries can't spawn unbounded goroutines. See spec §10
// ambient stack / §4.6 enter_zone.
package asyncpool

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// Pool runs tasks with at most n concurrently in flight.
type Pool struct {
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// New builds a Pool admitting at most n concurrent tasks. n <= 0 is
// treated as 1.
func New(n int, logger *slog.Logger) *Pool {
	if n <= 0 {
		n = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n)), logger: logger}
}

// Go acquires a slot and runs fn in a new goroutine, returning as soon as
// the slot is acquired (or ctx is done). The caller observes fn's error,
// if any, only via a logged warning: offload tasks are fire-and-forget by
// design (automix passes, fixture renders), with no result channel to
// keep the caller's block loop from blocking on slow work.
func (p *Pool) Go(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		if err := fn(ctx); err != nil {
			p.logger.Warn("offloaded task failed", "task", label, "error", err)
		}
	}()
	return nil
}

// TryGo acquires a slot without blocking; it reports false (and runs
// nothing) if the pool is currently saturated, letting a caller drop or
// defer the work instead of stalling a real-time block loop.
func (p *Pool) TryGo(label string, fn func(ctx context.Context) error) bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	go func() {
		defer p.sem.Release(1)
		if err := fn(context.Background()); err != nil {
			p.logger.Warn("offloaded task failed", "task", label, "error", err)
		}
	}()
	return true
}
