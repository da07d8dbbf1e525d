package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"kumbara/internal/kvstore"
	"kumbara/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Day returns midnight UTC of the given calendar date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewExpense builds an expense with a negative amount.
func NewExpense(amount string, date time.Time, category string) models.Transaction {
	return models.Transaction{
		ID:          fmt.Sprintf("%d", 1000+nextID()),
		Description: "expense " + category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Category:    category,
		Type:        models.TransactionTypeExpense,
	}
}

// NewIncome builds an income with a positive amount.
func NewIncome(amount string, date time.Time, category string) models.Transaction {
	return models.Transaction{
		ID:          fmt.Sprintf("%d", 1000+nextID()),
		Description: "income " + category,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Category:    category,
		Type:        models.TransactionTypeIncome,
	}
}

// NewInvestment builds a non-gold investment.
func NewInvestment(asset models.AssetType, price, quantity, fees, currentValue string, date time.Time) models.Transaction {
	p := decimal.RequireFromString(price)
	return models.Transaction{
		ID:            fmt.Sprintf("%d", 1000+nextID()),
		Description:   "buy " + string(asset),
		Amount:        p,
		Date:          date,
		Category:      "Investment",
		Type:          models.TransactionTypeInvestment,
		AssetType:     asset,
		Symbol:        "SYM",
		Name:          string(asset),
		Quantity:      decimal.RequireFromString(quantity),
		PurchasePrice: p,
		CurrentValue:  decimal.RequireFromString(currentValue),
		Fees:          decimal.RequireFromString(fees),
	}
}

// NewGoldInvestment builds a gold holding in the given category.
func NewGoldInvestment(goldCategory, price, quantity, currentValue string, date time.Time) models.Transaction {
	t := NewInvestment(models.AssetTypeGold, price, quantity, "0", currentValue, date)
	t.GoldCategory = goldCategory
	t.Name = goldCategory
	t.Symbol = ""
	return t
}

// ErrStoreDown is returned by FailingStore.
var ErrStoreDown = errors.New("store unavailable")

// FailingStore wraps a Store and fails writes (and optionally reads) while
// the corresponding flag is set.
type FailingStore struct {
	kvstore.Store

	mu       sync.Mutex
	failSet  bool
	failGet  bool
	setCalls int
}

// NewFailingStore wraps a fresh memory store.
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: kvstore.NewMemoryStore()}
}

// FailWrites toggles write failures.
func (s *FailingStore) FailWrites(fail bool) {
	s.mu.Lock()
	s.failSet = fail
	s.mu.Unlock()
}

// FailReads toggles read failures.
func (s *FailingStore) FailReads(fail bool) {
	s.mu.Lock()
	s.failGet = fail
	s.mu.Unlock()
}

// SetCalls returns how many writes were attempted.
func (s *FailingStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

func (s *FailingStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return "", ErrStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *FailingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.setCalls++
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	return s.Store.Set(ctx, key, value)
}

func (s *FailingStore) GetAllKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, ErrStoreDown
	}
	return s.Store.GetAllKeys(ctx)
}

func (s *FailingStore) RemoveMany(ctx context.Context, keys []string) error {
	s.mu.Lock()
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	return s.Store.RemoveMany(ctx, keys)
}
