package pricecache

import (
	"github.com/shopspring/decimal"

	"kumbara/internal/pricesource"
)

// PreferredOrder lists the categories shown first in pickers.
var PreferredOrder = []string{
	pricesource.GramAltin,
	pricesource.CeyrekYeni,
	pricesource.YarimYeni,
	pricesource.TamYeni,
	pricesource.HasAltin,
	pricesource.AtaYeni,
	pricesource.YirmiIkiAyar,
	pricesource.OnDortAyarAltin,
}

// defaultPrices is the last resort when neither a fetch nor a cached
// snapshot has a price for a category.
var defaultPrices = map[string]decimal.Decimal{
	pricesource.GramAltin:       decimal.RequireFromString("3475.89"),
	pricesource.HasAltin:        decimal.RequireFromString("3493.36"),
	pricesource.CeyrekYeni:      decimal.RequireFromString("5694.00"),
	pricesource.CeyrekEski:      decimal.RequireFromString("5600.00"),
	pricesource.YarimYeni:       decimal.RequireFromString("11388.00"),
	pricesource.YarimEski:       decimal.RequireFromString("11200.00"),
	pricesource.TamYeni:         decimal.RequireFromString("22707.00"),
	pricesource.TamEski:         decimal.RequireFromString("22400.00"),
	pricesource.AtaYeni:         decimal.RequireFromString("23400.00"),
	pricesource.AtaEski:         decimal.RequireFromString("23100.00"),
	pricesource.BesliAtaYeni:    decimal.RequireFromString("116500.00"),
	pricesource.BesliAtaEski:    decimal.RequireFromString("115000.00"),
	pricesource.GremseYeni:      decimal.RequireFromString("56900.00"),
	pricesource.GremseEski:      decimal.RequireFromString("56000.00"),
	pricesource.OnDortAyarAltin: decimal.RequireFromString("1970.00"),
	pricesource.YirmiIkiAyar:    decimal.RequireFromString("3180.00"),
}

// DefaultPrices returns a copy of the hardcoded price table.
func DefaultPrices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(defaultPrices))
	for k, v := range defaultPrices {
		out[k] = v
	}
	return out
}

// DefaultCategories returns every known category in display order.
func DefaultCategories() []string {
	return orderCategories(pricesource.CategoryNames())
}
