package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kumbara/internal/aggregate"
	apperrors "kumbara/internal/errors"
	"kumbara/internal/kvstore"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/scheduler"
	"kumbara/internal/validator"
)

// TrackerOption configures the tracker service.
type TrackerOption func(*trackerService)

// WithClock overrides time.Now for filter windows.
func WithClock(now func() time.Time) TrackerOption {
	return func(s *trackerService) { s.now = now }
}

// trackerService handles the consumer-facing ledger and price operations.
type trackerService struct {
	ledger    LedgerStore
	prices    PriceCache
	refresher PriceRefresher
	validator *validator.TransactionValidator
	filters   *filterPreferences
	now       func() time.Time
}

// NewTrackerService creates a new TrackerServicer. The store keeps the
// filter preferences.
func NewTrackerService(store kvstore.Store, l LedgerStore, prices PriceCache, refresher PriceRefresher, opts ...TrackerOption) TrackerServicer {
	s := &trackerService{
		ledger:    l,
		prices:    prices,
		refresher: refresher,
		validator: validator.New(prices.HasCategory),
		filters:   newFilterPreferences(store),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTransaction validates t and appends it to the ledger.
func (s *trackerService) AddTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	t = s.applyInvestmentDefaults(t)
	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}
	added, _ := s.ledger.Add(ctx, t)
	return &added, nil
}

// UpdateTransaction validates t and replaces the stored transaction with the same id.
func (s *trackerService) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	if t.ID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction id is required")
	}
	if _, ok := s.ledger.Get(t.ID); !ok {
		return nil, apperrors.ErrTransactionNotFound
	}

	t = s.applyInvestmentDefaults(t)
	if err := s.validator.Validate(t); err != nil {
		return nil, err
	}
	if _, ok := s.ledger.Update(ctx, t); !ok {
		// deleted between the lookup and the update
		return nil, apperrors.ErrTransactionNotFound
	}
	updated, ok := s.ledger.Get(t.ID)
	if !ok {
		return nil, apperrors.ErrTransactionNotFound
	}
	return &updated, nil
}

// DeleteTransaction removes a transaction by id.
func (s *trackerService) DeleteTransaction(ctx context.Context, id string) error {
	if _, ok := s.ledger.Delete(ctx, id); !ok {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// SetAllTransactions replaces the whole ledger. Nothing is replaced unless
// every entry is valid.
func (s *trackerService) SetAllTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	prepared := make([]models.Transaction, len(txns))
	for i, t := range txns {
		t = s.applyInvestmentDefaults(t)
		if err := s.validator.Validate(t); err != nil {
			msg := err.Error()
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				msg = appErr.Message
			}
			return nil, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("transaction %d: %s", i, msg))
		}
		prepared[i] = t
	}
	snap := s.ledger.Replace(ctx, prepared)
	return snap.Transactions, nil
}

// GetFilteredTransactions returns the ledger entries inside the filter's
// window, newest first. A nil filter uses the persisted active filter.
func (s *trackerService) GetFilteredTransactions(ctx context.Context, filter *models.Filter) ([]models.Transaction, error) {
	f, err := s.resolveFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return aggregate.Filter(s.ledger.Snapshot().Transactions, f, s.now()), nil
}

// GetFilteredTotals sums the entries inside the filter's window.
func (s *trackerService) GetFilteredTotals(ctx context.Context, filter *models.Filter) (*aggregate.Totals, error) {
	txns, err := s.GetFilteredTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	totals := aggregate.ComputeTotals(txns)
	return &totals, nil
}

// GetInvestments returns every investment regardless of the active filter.
func (s *trackerService) GetInvestments(_ context.Context) []models.Transaction {
	return aggregate.Investments(s.ledger.Snapshot().Transactions)
}

// CalculateGainLoss returns the unrealized result of one investment.
func (s *trackerService) CalculateGainLoss(_ context.Context, id string) (*aggregate.GainLoss, error) {
	t, ok := s.ledger.Get(id)
	if !ok || !t.IsInvestment() {
		return nil, apperrors.ErrInvestmentNotFound
	}
	g := aggregate.CalculateGainLoss(t)
	return &g, nil
}

// GetGoldCategories returns the selectable gold categories.
func (s *trackerService) GetGoldCategories(_ context.Context) []string {
	return s.prices.Categories()
}

// GetCurrentPrices returns the price table with its age.
func (s *trackerService) GetCurrentPrices(ctx context.Context) *PricesView {
	view := &PricesView{
		Prices:     s.prices.CurrentPrices(),
		Categories: s.prices.Categories(),
		Stale:      true,
	}
	snap, err := s.prices.Get(ctx)
	if err != nil {
		logger.Get().Warnw("serving gold prices without cache metadata", "error", err)
		return view
	}
	if snap != nil {
		last := snap.LastUpdate
		view.LastUpdate = &last
	}
	view.Stale = s.prices.IsStale(snap)
	return view
}

// ForceRefreshPrices runs a refresh cycle now. A failed fetch is reported
// in the result, never as an error.
func (s *trackerService) ForceRefreshPrices(ctx context.Context) *scheduler.RunResult {
	result := s.refresher.Refresh(ctx)
	return &result
}

// GetActiveFilter returns the persisted filter.
func (s *trackerService) GetActiveFilter(ctx context.Context) models.Filter {
	return s.filters.Active(ctx)
}

// SetActiveFilter switches and persists the active filter.
func (s *trackerService) SetActiveFilter(ctx context.Context, f models.Filter) (*models.Filter, error) {
	out, err := s.filters.Set(ctx, f)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetData clears the ledger, the price cache and the filter preferences,
// in memory and in the store. Each owner removes its own keys, so a change
// committed after the reset is never wiped from the store.
func (s *trackerService) ResetData(ctx context.Context) error {
	var errs []error
	if _, err := s.ledger.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.prices.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.filters.Reset(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	logger.Get().Infow("all data reset")
	return nil
}

func (s *trackerService) resolveFilter(ctx context.Context, filter *models.Filter) (models.Filter, error) {
	if filter == nil {
		return s.filters.Active(ctx), nil
	}
	if !filter.Kind.Valid() {
		return models.Filter{}, apperrors.WithMessage(apperrors.ErrInvalidFilter, "unsupported filter kind: "+string(filter.Kind))
	}
	return *filter, nil
}

// applyInvestmentDefaults fills the derived investment fields: the amount
// mirrors the unit purchase price and gold holdings are valued at the cached
// price. Other holdings keep the current value they were given, zero
// included.
func (s *trackerService) applyInvestmentDefaults(t models.Transaction) models.Transaction {
	if t.Type != models.TransactionTypeInvestment {
		return t
	}
	t.Amount = t.PurchasePrice
	if t.AssetType == models.AssetTypeGold && t.GoldCategory != "" {
		if price, ok := s.prices.Price(t.GoldCategory); ok {
			t.CurrentValue = price.Mul(t.Quantity)
		}
	}
	return t
}
