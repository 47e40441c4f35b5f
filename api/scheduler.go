/*
scheduler.go - Run history retention scheduler

PURPOSE:
  Periodically prunes run history older than the retention window so the
  store does not grow without bound.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Prunes once immediately on start, then on every tick
  - Deletes runs created strictly before now - Retention

CONFIGURATION:
  - CheckInterval: How often to prune (default: 1 hour)
  - Retention: How long runs are kept (default: 30 days)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRetentionScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - generic/store.go: RunStore.DeleteRunsBefore
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/settlement-engine/generic"
	"go.uber.org/zap"
)

// RetentionScheduler prunes old runs in the background.
type RetentionScheduler struct {
	Store         generic.RunStore
	Logger        *zap.Logger
	CheckInterval time.Duration
	Retention     time.Duration
	Enabled       bool

	now     func() time.Time
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewRetentionScheduler creates a new scheduler.
func NewRetentionScheduler(store generic.RunStore, log *zap.Logger) *RetentionScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RetentionScheduler{
		Store:         store,
		Logger:        log.Named("retention"),
		CheckInterval: time.Hour,
		Retention:     30 * 24 * time.Hour,
		Enabled:       true,
		now:           time.Now,
	}
}

// Start begins the scheduler. Calling Start on a running scheduler is a no-op.
func (rs *RetentionScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("scheduler disabled, not starting")
		return
	}
	if rs.running {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.running = true
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("scheduler started",
		zap.Duration("check_interval", rs.CheckInterval),
		zap.Duration("retention", rs.Retention),
	)
}

// Stop stops the scheduler and waits for an in-flight prune to finish.
func (rs *RetentionScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.running {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.running = false
	rs.Logger.Info("scheduler stopped")
}

func (rs *RetentionScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.Prune(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.Prune(context.Background())
		case <-stop:
			return
		}
	}
}

// Prune deletes runs older than the retention window and returns how many went.
func (rs *RetentionScheduler) Prune(ctx context.Context) int {
	cutoff := rs.now().Add(-rs.Retention)

	n, err := rs.Store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		rs.Logger.Error("prune runs", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0
	}
	if n > 0 {
		rs.Logger.Info("pruned runs", zap.Int("deleted", n), zap.Time("cutoff", cutoff))
	}
	return n
}
