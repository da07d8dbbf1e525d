package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kumbara/internal/aggregate"
	"kumbara/internal/ledger"
	"kumbara/internal/models"
	"kumbara/internal/pricecache"
	"kumbara/internal/scheduler"
)

// LedgerStore is the ledger contract the tracker service depends on.
type LedgerStore interface {
	Snapshot() ledger.Snapshot
	Get(id string) (models.Transaction, bool)
	Add(ctx context.Context, t models.Transaction) (models.Transaction, ledger.Snapshot)
	Update(ctx context.Context, t models.Transaction) (ledger.Snapshot, bool)
	Delete(ctx context.Context, id string) (ledger.Snapshot, bool)
	Replace(ctx context.Context, txns []models.Transaction) ledger.Snapshot
	Reset(ctx context.Context) (ledger.Snapshot, error)
	Subscribe(buffer int) (<-chan ledger.Event, func())
}

// PriceCache is the price cache contract the tracker service depends on.
type PriceCache interface {
	Get(ctx context.Context) (*models.PriceSnapshot, error)
	IsStale(snap *models.PriceSnapshot) bool
	Categories() []string
	CurrentPrices() map[string]decimal.Decimal
	Price(category string) (decimal.Decimal, bool)
	HasCategory(name string) bool
	Reset(ctx context.Context) error
	Subscribe(buffer int) (<-chan pricecache.Event, func())
}

// PriceRefresher runs one fetch→merge→revalue cycle.
type PriceRefresher interface {
	Refresh(ctx context.Context) scheduler.RunResult
}

// PricesView is the current gold price table as served to consumers.
type PricesView struct {
	Prices     map[string]decimal.Decimal `json:"prices"`
	LastUpdate *time.Time                 `json:"lastUpdate,omitempty"`
	Stale      bool                       `json:"stale"`
	Categories []string                   `json:"categories"`
}

// EventType tells which part of the core changed.
type EventType string

const (
	EventTypeLedger EventType = "ledger"
	EventTypePrices EventType = "prices"
)

// Event is a change notification for consumers.
type Event struct {
	Type       EventType     `json:"type"`
	Ledger     *ledger.Event `json:"ledger,omitempty"`
	LastUpdate *time.Time    `json:"lastUpdate,omitempty"`
}

// TrackerServicer defines the contract the consumer layer calls into.
type TrackerServicer interface {
	AddTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	SetAllTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	GetFilteredTransactions(ctx context.Context, filter *models.Filter) ([]models.Transaction, error)
	GetFilteredTotals(ctx context.Context, filter *models.Filter) (*aggregate.Totals, error)
	GetInvestments(ctx context.Context) []models.Transaction
	CalculateGainLoss(ctx context.Context, id string) (*aggregate.GainLoss, error)
	GetGoldCategories(ctx context.Context) []string
	GetCurrentPrices(ctx context.Context) *PricesView
	ForceRefreshPrices(ctx context.Context) *scheduler.RunResult
	GetActiveFilter(ctx context.Context) models.Filter
	SetActiveFilter(ctx context.Context, f models.Filter) (*models.Filter, error)
	ResetData(ctx context.Context) error
	Subscribe(buffer int) (<-chan Event, func())
}
