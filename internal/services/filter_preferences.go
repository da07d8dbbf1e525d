package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/kvstore"
	"kumbara/internal/logger"
	"kumbara/internal/models"
)

// filterPreferences remembers the active filter, its custom range and the
// last custom range used, so switching back to custom restores it.
type filterPreferences struct {
	store kvstore.Store

	mu        sync.Mutex
	loaded    bool
	active    models.FilterKind
	custom    *models.DateRange
	lastRange *models.DateRange
}

func newFilterPreferences(store kvstore.Store) *filterPreferences {
	return &filterPreferences{store: store, active: models.FilterLast30Days}
}

func (p *filterPreferences) loadLocked(ctx context.Context) {
	if p.loaded {
		return
	}
	p.loaded = true

	var kind models.FilterKind
	if err := kvstore.GetJSON(ctx, p.store, kvstore.KeyActiveFilter, &kind); err == nil && kind.Valid() {
		p.active = kind
	} else if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		logger.Get().Warnw("could not read active filter", "key", kvstore.KeyActiveFilter, "error", err)
	}
	p.custom = p.readRange(ctx, kvstore.KeyCustomDateRange)
	p.lastRange = p.readRange(ctx, kvstore.KeyLastCustomRange)
}

func (p *filterPreferences) readRange(ctx context.Context, key string) *models.DateRange {
	var r models.DateRange
	if err := kvstore.GetJSON(ctx, p.store, key, &r); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Get().Warnw("could not read date range", "key", key, "error", err)
		}
		return nil
	}
	if r.StartDate.IsZero() {
		return nil
	}
	return &r
}

// Active returns the persisted filter, defaulting to last30Days.
func (p *filterPreferences) Active(ctx context.Context) models.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked(ctx)

	f := models.Filter{Kind: p.active}
	if p.active == models.FilterCustom && p.custom != nil {
		r := *p.custom
		f.CustomRange = &r
	}
	return f
}

// Set switches the active filter. A custom filter without a range restores
// the last custom range; leaving custom remembers the current range.
func (p *filterPreferences) Set(ctx context.Context, f models.Filter) (models.Filter, error) {
	if !f.Kind.Valid() {
		return models.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidFilter, "unsupported filter kind: "+string(f.Kind))
	}
	if f.CustomRange != nil {
		if f.CustomRange.StartDate.IsZero() {
			return models.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidFilter, "custom range needs a start date")
		}
		if f.CustomRange.EndDate != nil && f.CustomRange.EndDate.Before(f.CustomRange.StartDate) {
			return models.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidFilter, "custom range ends before it starts")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadLocked(ctx)

	if f.Kind == models.FilterCustom {
		switch {
		case f.CustomRange != nil:
			r := *f.CustomRange
			p.custom = &r
		case p.custom == nil && p.lastRange != nil:
			r := *p.lastRange
			p.custom = &r
		}
		if p.custom != nil {
			r := *p.custom
			p.lastRange = &r
		}
	} else if p.custom != nil {
		p.lastRange = p.custom
		p.custom = nil
	}
	p.active = f.Kind

	p.persistLocked(ctx)

	out := models.Filter{Kind: p.active}
	if p.active == models.FilterCustom && p.custom != nil {
		r := *p.custom
		out.CustomRange = &r
	}
	return out, nil
}

func (p *filterPreferences) persistLocked(ctx context.Context) {
	write := func(key string, v any) {
		if err := kvstore.SetJSON(ctx, p.store, key, v); err != nil {
			logger.Get().Errorw("failed to persist filter preference", "key", key,
				"error", apperrors.Wrap(apperrors.ErrPersistence, err))
		}
	}
	remove := func(key string) {
		if err := p.store.Remove(ctx, key); err != nil {
			logger.Get().Errorw("failed to remove filter preference", "key", key,
				"error", apperrors.Wrap(apperrors.ErrPersistence, err))
		}
	}

	write(kvstore.KeyActiveFilter, p.active)
	if p.custom != nil {
		write(kvstore.KeyCustomDateRange, p.custom)
	} else {
		remove(kvstore.KeyCustomDateRange)
	}
	if p.lastRange != nil {
		write(kvstore.KeyLastCustomRange, p.lastRange)
	}
}

// Reset forgets every preference and removes the stored keys.
func (p *filterPreferences) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	p.active = models.FilterLast30Days
	p.custom = nil
	p.lastRange = nil

	keys := []string{kvstore.KeyActiveFilter, kvstore.KeyCustomDateRange, kvstore.KeyLastCustomRange}
	if err := p.store.RemoveMany(ctx, keys); err != nil {
		return fmt.Errorf("removing filter preferences: %w", err)
	}
	return nil
}
