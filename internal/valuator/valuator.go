// Package valuator keeps gold holdings valued at the cached price.
package valuator

import (
	"context"

	"github.com/shopspring/decimal"

	"kumbara/internal/ledger"
	"kumbara/internal/logger"
	"kumbara/internal/models"
)

// Ledger is the part of the ledger the valuator needs.
type Ledger interface {
	Snapshot() ledger.Snapshot
	Revalue(ctx context.Context, updates []ledger.Revaluation) (ledger.Snapshot, int)
}

// Valuator recomputes currentValue = price * quantity for gold holdings.
type Valuator struct {
	ledger Ledger
}

// New creates a valuator over l.
func New(l Ledger) *Valuator {
	return &Valuator{ledger: l}
}

// Diff lists the gold holdings whose stored value differs from
// price * quantity. Holdings without a positive price are left alone.
func Diff(txns []models.Transaction, prices map[string]decimal.Decimal) []ledger.Revaluation {
	var out []ledger.Revaluation
	for _, t := range txns {
		if !t.IsGold() {
			continue
		}
		price, ok := prices[t.GoldCategory]
		if !ok || !price.IsPositive() {
			continue
		}
		value := price.Mul(t.Quantity)
		if value.Equal(t.CurrentValue) {
			continue
		}
		out = append(out, ledger.Revaluation{ID: t.ID, CurrentValue: value})
	}
	return out
}

// Apply diffs the ledger against prices and applies every change in one
// ledger command. With unchanged prices it touches nothing. It returns the
// number of holdings revalued.
func (v *Valuator) Apply(ctx context.Context, prices map[string]decimal.Decimal) int {
	updates := Diff(v.ledger.Snapshot().Transactions, prices)
	if len(updates) == 0 {
		return 0
	}
	_, n := v.ledger.Revalue(ctx, updates)
	if n > 0 {
		logger.Get().Infow("gold holdings revalued", "count", n)
	}
	return n
}
