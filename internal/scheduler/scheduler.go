// Package scheduler refreshes the gold price cache on start when it is
// stale and then on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/pricecache"
	"kumbara/internal/pricesource"
)

// Cache is the part of the price cache the scheduler drives.
type Cache interface {
	Get(ctx context.Context) (*models.PriceSnapshot, error)
	IsStale(snap *models.PriceSnapshot) bool
	Merge(ctx context.Context, fetched map[string]decimal.Decimal) (map[string]decimal.Decimal, error)
}

// UpdateFunc runs after every successful merge with the merged table.
type UpdateFunc func(ctx context.Context, prices map[string]decimal.Decimal)

// RunResult contains the outcome of one refresh cycle.
type RunResult struct {
	Fetched    int           `json:"fetched"`
	Categories int           `json:"categories"`
	Fallback   bool          `json:"fallback"`
	Skipped    bool          `json:"skipped,omitempty"`
	Error      string        `json:"error,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Duration   time.Duration `json:"-"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithOnUpdate registers the completion callback.
func WithOnUpdate(fn UpdateFunc) Option {
	return func(s *Scheduler) { s.onUpdate = fn }
}

// WithClock overrides time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler owns the refresh loop.
type Scheduler struct {
	fetcher  pricesource.Fetcher
	cache    Cache
	interval time.Duration
	onUpdate UpdateFunc
	now      func() time.Time

	// refreshMu serializes fetch→merge cycles.
	refreshMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler that refreshes every interval.
func New(fetcher pricesource.Fetcher, cache Cache, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:  fetcher,
		cache:    cache,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start refreshes once right away if the cached snapshot is stale, then arms
// the repeating timer. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	snap, err := s.cache.Get(ctx)
	if err != nil {
		logger.Get().Warnw("could not read cached gold prices, treating as stale", "error", err)
		snap = nil
	}
	if s.cache.IsStale(snap) {
		s.Refresh(ctx)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx, s.done)

	logger.Get().Infow("gold price scheduler started", "interval", s.interval.String())
}

// Stop disarms the timer and waits for the loop to exit. It is safe to call
// repeatedly and on a scheduler that never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	logger.Get().Info("gold price scheduler stopped")
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one fetch→merge cycle. A failed fetch still merges, so the
// cache falls back to the previous snapshot or the defaults and its
// timestamp moves forward. If ctx ends during the fetch, or the cache has
// been closed, the cycle stops without touching the cache.
func (s *Scheduler) Refresh(ctx context.Context) RunResult {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	result := RunResult{}

	fetched, err := s.fetcher.FetchPrices(ctx)
	if err != nil {
		result.Fallback = true
		result.Error = err.Error()
		fetched = nil
		logger.Get().Warnw("gold price fetch failed, using cached prices", "error", err)
	}
	result.Fetched = len(fetched)

	if ctx.Err() != nil {
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	merged, err := s.cache.Merge(ctx, fetched)
	if err != nil {
		result.Skipped = true
		if result.Error == "" {
			result.Error = err.Error()
		}
		if !errors.Is(err, pricecache.ErrClosed) {
			logger.Get().Errorw("gold price merge failed", "error", err)
		}
		result.Duration = time.Since(start)
		return result
	}
	result.Categories = len(merged)
	result.UpdatedAt = s.now()

	if s.onUpdate != nil {
		s.onUpdate(ctx, merged)
	}

	result.Duration = time.Since(start)
	logger.Get().Infow("gold prices refreshed",
		"fetched", result.Fetched,
		"categories", result.Categories,
		"fallback", result.Fallback,
		"duration", result.Duration.String(),
	)
	return result
}
