package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeExpense    TransactionType = "expense"
	TransactionTypeIncome     TransactionType = "income"
	TransactionTypeInvestment TransactionType = "investment"
)

// AssetType represents the asset class of an investment.
type AssetType string

const (
	AssetTypeStock           AssetType = "Stock"
	AssetTypeCryptocurrency  AssetType = "Cryptocurrency"
	AssetTypeBond            AssetType = "Bond"
	AssetTypeMutualFund      AssetType = "Mutual Fund"
	AssetTypeETF             AssetType = "ETF"
	AssetTypeRealEstate      AssetType = "Real Estate"
	AssetTypeGold            AssetType = "Gold"
	AssetTypeForeignCurrency AssetType = "Foreign Currency"
	AssetTypeOther           AssetType = "Other"
)

// AssetTypes lists every supported asset class.
var AssetTypes = []AssetType{
	AssetTypeStock,
	AssetTypeCryptocurrency,
	AssetTypeBond,
	AssetTypeMutualFund,
	AssetTypeETF,
	AssetTypeRealEstate,
	AssetTypeGold,
	AssetTypeForeignCurrency,
	AssetTypeOther,
}

// Valid reports whether a is one of the supported asset classes.
func (a AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if a == known {
			return true
		}
	}
	return false
}

// Transaction is a single ledger entry. Amount is signed for income and
// expenses; for investments it carries the per-unit purchase price.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	IsRecurring bool            `json:"isRecurring"`
	Type        TransactionType `json:"type"`

	// Investment-only fields
	AssetType     AssetType       `json:"assetType,omitempty"`
	Symbol        string          `json:"symbol,omitempty"`
	Name          string          `json:"name,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	Fees          decimal.Decimal `json:"fees"`
	GoldCategory  string          `json:"goldCategory,omitempty"`
}

// IsInvestment reports whether the transaction is an investment holding.
func (t Transaction) IsInvestment() bool {
	return t.Type == TransactionTypeInvestment
}

// IsGold reports whether the transaction is a gold holding valued from the price cache.
func (t Transaction) IsGold() bool {
	return t.IsInvestment() && t.AssetType == AssetTypeGold && t.GoldCategory != ""
}

// CostBasis returns purchasePrice * quantity + fees.
func (t Transaction) CostBasis() decimal.Decimal {
	return t.PurchasePrice.Mul(t.Quantity).Add(t.Fees)
}

// Equal compares two transactions field by field, using decimal equality
// for numeric fields and instant equality for the date.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Description == o.Description &&
		t.Amount.Equal(o.Amount) &&
		t.Date.Equal(o.Date) &&
		t.Category == o.Category &&
		t.IsRecurring == o.IsRecurring &&
		t.Type == o.Type &&
		t.AssetType == o.AssetType &&
		t.Symbol == o.Symbol &&
		t.Name == o.Name &&
		t.Quantity.Equal(o.Quantity) &&
		t.PurchasePrice.Equal(o.PurchasePrice) &&
		t.CurrentValue.Equal(o.CurrentValue) &&
		t.Fees.Equal(o.Fees) &&
		t.GoldCategory == o.GoldCategory
}

// CategoryKey is the case-insensitive identity of a category name.
func CategoryKey(category string) string {
	return strings.ToLower(category)
}
