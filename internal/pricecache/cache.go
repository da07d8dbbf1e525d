// Package pricecache holds the gold price snapshot, merges fresh fetches
// over it and persists it to the key/value store.
package pricecache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/events"
	"kumbara/internal/kvstore"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/pricesource"
)

// DefaultStaleAfter is the maximum age of a snapshot before a refresh is due.
const DefaultStaleAfter = 15 * time.Minute

// ErrClosed is returned by Merge after Close.
var ErrClosed = errors.New("pricecache: closed")

// Event is published after every merge.
type Event struct {
	Snapshot *models.PriceSnapshot
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStaleAfter overrides DefaultStaleAfter.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.staleAfter = d
		}
	}
}

// Cache is the gold price cache.
type Cache struct {
	store      kvstore.Store
	writer     *kvstore.SnapshotWriter
	staleAfter time.Duration
	now        func() time.Time
	events     *events.Broadcaster[Event]

	mu       sync.Mutex
	snapshot *models.PriceSnapshot
	loaded   bool
	closed   bool
	version  uint64
}

// New creates a cache over store. Nothing is read until first use.
func New(store kvstore.Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		writer:     kvstore.NewSnapshotWriter(store),
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		events:     events.NewBroadcaster[Event](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, reading it from the store on first use.
// A nil snapshot with a nil error means nothing has ever been cached.
func (c *Cache) Get(ctx context.Context) (*models.PriceSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	return c.snapshot.Clone(), nil
}

func (c *Cache) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	var prices map[string]decimal.Decimal
	err := kvstore.GetJSON(ctx, c.store, kvstore.KeyGoldPrices, &prices)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		c.loaded = true
		return nil
	case err != nil:
		logger.Get().Errorw("failed to read cached gold prices", "key", kvstore.KeyGoldPrices, "error", err)
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var lastUpdate time.Time
	if err := kvstore.GetJSON(ctx, c.store, kvstore.KeyLastGoldUpdate, &lastUpdate); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		logger.Get().Warnw("ignoring unreadable gold price timestamp", "key", kvstore.KeyLastGoldUpdate, "error", err)
	}

	if len(prices) > 0 {
		c.snapshot = &models.PriceSnapshot{Prices: prices, LastUpdate: lastUpdate}
	}
	c.loaded = true
	return nil
}

// Merge layers fetched prices over the previous snapshot and then over the
// default table, so every known category ends up with a price. LastUpdate is
// set to now even when nothing was fetched. The merged table is persisted and
// published; a persistence failure is logged and the in-memory snapshot is
// kept.
func (c *Cache) Merge(ctx context.Context, fetched map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if err := c.loadLocked(ctx); err != nil {
		// Treat an unreadable store like an empty one; the merge below
		// still yields a full table.
		c.loaded = true
	}

	merged := make(map[string]decimal.Decimal, len(defaultPrices))
	for name, price := range fetched {
		if price.IsPositive() {
			merged[name] = price
		}
	}
	for _, name := range pricesource.CategoryNames() {
		if _, ok := merged[name]; ok {
			continue
		}
		if prior, ok := c.snapshot.Price(name); ok && prior.IsPositive() {
			merged[name] = prior
			continue
		}
		merged[name] = defaultPrices[name]
	}

	c.snapshot = &models.PriceSnapshot{Prices: merged, LastUpdate: c.now()}
	c.version++
	version := c.version
	snap := c.snapshot.Clone()
	c.mu.Unlock()

	c.persist(ctx, version, snap)
	c.events.Publish(Event{Snapshot: snap})

	return snap.Prices, nil
}

func (c *Cache) persist(ctx context.Context, version uint64, snap *models.PriceSnapshot) {
	if _, err := c.writer.Write(ctx, kvstore.KeyGoldPrices, version, snap.Prices); err != nil {
		logger.Get().Errorw("failed to persist gold prices", "key", kvstore.KeyGoldPrices,
			"error", apperrors.Wrap(apperrors.ErrPersistence, err))
		return
	}
	if _, err := c.writer.Write(ctx, kvstore.KeyLastGoldUpdate, version, snap.LastUpdate); err != nil {
		logger.Get().Errorw("failed to persist gold price timestamp", "key", kvstore.KeyLastGoldUpdate,
			"error", apperrors.Wrap(apperrors.ErrPersistence, err))
	}
}

// IsStale reports whether snap is missing or older than the staleness threshold.
func (c *Cache) IsStale(snap *models.PriceSnapshot) bool {
	return IsStale(snap, c.now(), c.staleAfter)
}

// IsStale reports whether snap is missing or older than threshold at now.
func IsStale(snap *models.PriceSnapshot, now time.Time, threshold time.Duration) bool {
	if snap == nil {
		return true
	}
	return now.Sub(snap.LastUpdate) > threshold
}

// Categories returns the known categories with the preferred ones first.
// An empty cache yields the full default list.
func (c *Cache) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil || len(c.snapshot.Prices) == 0 {
		return DefaultCategories()
	}
	names := make([]string, 0, len(c.snapshot.Prices))
	for name := range c.snapshot.Prices {
		names = append(names, name)
	}
	return orderCategories(names)
}

// HasCategory reports whether name is selectable as a gold category.
func (c *Cache) HasCategory(name string) bool {
	if _, ok := pricesource.CategoryNameSet()[name]; ok {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.snapshot.Price(name)
	return ok
}

// CurrentPrices returns the cached table, or the default table when nothing
// is cached yet.
func (c *Cache) CurrentPrices() map[string]decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil || len(c.snapshot.Prices) == 0 {
		return DefaultPrices()
	}
	return c.snapshot.Clone().Prices
}

// Price returns the price for a category, falling back to the default
// table. The bool is false only for categories nobody knows.
func (c *Cache) Price(category string) (decimal.Decimal, bool) {
	c.mu.Lock()
	p, ok := c.snapshot.Price(category)
	c.mu.Unlock()
	if ok && p.IsPositive() {
		return p, true
	}
	p, ok = defaultPrices[category]
	return p, ok
}

// Subscribe registers for merge events.
func (c *Cache) Subscribe(buffer int) (<-chan Event, func()) {
	return c.events.Subscribe(buffer)
}

// Reset drops the in-memory snapshot and blocks older pending writes. The
// caller removes the stored keys afterwards.
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.snapshot = nil
	c.loaded = true
	c.version++
	version := c.version
	c.writer.Invalidate(version, kvstore.KeyGoldPrices, kvstore.KeyLastGoldUpdate)
	c.mu.Unlock()

	if err := c.writer.Remove(context.WithoutCancel(ctx), version, kvstore.KeyGoldPrices, kvstore.KeyLastGoldUpdate); err != nil {
		return fmt.Errorf("removing gold prices: %w", err)
	}
	return nil
}

// Close makes later merges no-ops and closes every subscription.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.events.Close()
}

// orderCategories puts the preferred categories first, then the remaining
// known ones in table order, then anything else alphabetically.
func orderCategories(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	add := func(n string) {
		if present[n] && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range PreferredOrder {
		add(n)
	}
	for _, n := range pricesource.CategoryNames() {
		add(n)
	}

	var extras []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			extras = append(extras, n)
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}
