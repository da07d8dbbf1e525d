package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the cached gold price table.
// This is the whole table as of LastUpdate, not a delta.
type PriceSnapshot struct {
	Prices     map[string]decimal.Decimal `json:"prices"`
	LastUpdate time.Time                  `json:"lastUpdate"`
}

// Price returns the cached price for a category.
func (s *PriceSnapshot) Price(category string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	p, ok := s.Prices[category]
	return p, ok
}

// Clone returns a deep copy of the snapshot.
func (s *PriceSnapshot) Clone() *PriceSnapshot {
	if s == nil {
		return nil
	}
	prices := make(map[string]decimal.Decimal, len(s.Prices))
	for k, v := range s.Prices {
		prices[k] = v
	}
	return &PriceSnapshot{Prices: prices, LastUpdate: s.LastUpdate}
}
