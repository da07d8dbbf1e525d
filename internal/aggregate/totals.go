package aggregate

import (
	"github.com/shopspring/decimal"

	"kumbara/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals is the derived summary of a set of transactions. Total counts
// investments by their unrealized gain or loss, not their value.
type Totals struct {
	Income                    decimal.Decimal `json:"income"`
	Expenses                  decimal.Decimal `json:"expenses"`
	InvestmentValue           decimal.Decimal `json:"investmentValue"`
	InvestmentPurchaseTotal   decimal.Decimal `json:"investmentPurchaseTotal"`
	InvestmentValueDifference decimal.Decimal `json:"investmentValueDifference"`
	Total                     decimal.Decimal `json:"total"`
}

// ComputeTotals sums txns. Expenses stay negative.
func ComputeTotals(txns []models.Transaction) Totals {
	var t Totals
	for _, txn := range txns {
		if txn.IsInvestment() {
			t.InvestmentValue = t.InvestmentValue.Add(txn.CurrentValue)
			t.InvestmentPurchaseTotal = t.InvestmentPurchaseTotal.Add(txn.CostBasis())
			continue
		}
		switch {
		case txn.Amount.IsPositive():
			t.Income = t.Income.Add(txn.Amount)
		case txn.Amount.IsNegative():
			t.Expenses = t.Expenses.Add(txn.Amount)
		}
	}
	t.InvestmentValueDifference = t.InvestmentValue.Sub(t.InvestmentPurchaseTotal)
	t.Total = t.Income.Add(t.Expenses).Add(t.InvestmentValueDifference)
	return t
}

// GainLoss is the unrealized result of one investment.
type GainLoss struct {
	CostBasis    decimal.Decimal `json:"costBasis"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	GainLoss     decimal.Decimal `json:"gainLoss"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// CalculateGainLoss returns currentValue - (purchasePrice*quantity + fees)
// and its share of the cost basis in percent (0 when the basis is not positive).
func CalculateGainLoss(t models.Transaction) GainLoss {
	basis := t.CostBasis()
	g := GainLoss{
		CostBasis:    basis,
		CurrentValue: t.CurrentValue,
		GainLoss:     t.CurrentValue.Sub(basis),
	}
	if basis.IsPositive() {
		g.Percentage = g.GainLoss.Div(basis).Mul(hundred).Round(2)
	}
	return g
}
