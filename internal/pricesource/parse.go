package pricesource

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocalizedDecimal converts a Turkish-formatted number ("3.475,89")
// into a decimal. Dots are thousands separators and the comma is the
// fractional separator.
func ParseLocalizedDecimal(s string) (decimal.Decimal, error) {
	normalized := strings.TrimSpace(s)
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("empty price %q", s)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing price %q: %w", s, err)
	}
	return d, nil
}
