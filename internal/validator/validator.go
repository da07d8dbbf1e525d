// Package validator checks transactions before they reach the ledger and
// registers the custom tags used by Gin's binding engine.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerTags(v)
	}
}

func registerTags(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("asset_type", validateAssetType)
	_ = v.RegisterValidation("filter_kind", validateFilterKind)
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeExpense, models.TransactionTypeIncome, models.TransactionTypeInvestment:
		return true
	}
	return false
}

func validateAssetType(fl validator.FieldLevel) bool {
	return models.AssetType(fl.Field().String()).Valid()
}

func validateFilterKind(fl validator.FieldLevel) bool {
	return models.FilterKind(fl.Field().String()).Valid()
}

// messages maps the tags reported by the struct-level rules to text.
var messages = map[string]string{
	"required":         "is required",
	"transaction_type": "must be expense, income or investment",
	"asset_type":       "is not a supported asset type",
	"negative":         "must be negative for an expense",
	"positive":         "must be positive for income",
	"nonzero":          "must not be zero",
	"gt0":              "must be greater than zero",
	"gte0":             "must not be negative",
	"gold_category":    "is not a known gold category",
	"gold_only":        "is only allowed for Gold investments",
}

// TransactionValidator validates transactions. Gold categories are checked
// against knownGoldCategory.
type TransactionValidator struct {
	validate          *validator.Validate
	knownGoldCategory func(string) bool
}

// New creates a TransactionValidator. A nil knownGoldCategory accepts any
// non-empty category.
func New(knownGoldCategory func(string) bool) *TransactionValidator {
	tv := &TransactionValidator{
		validate:          validator.New(),
		knownGoldCategory: knownGoldCategory,
	}
	registerTags(tv.validate)
	tv.validate.RegisterTagNameFunc(jsonFieldName)
	tv.validate.RegisterStructValidation(tv.transactionRules, models.Transaction{})
	return tv
}

// Validate returns an ErrValidation listing every broken rule, or nil.
func (tv *TransactionValidator) Validate(t models.Transaction) error {
	err := tv.validate.Struct(t)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		parts = append(parts, fe.Field()+" "+msg)
	}
	return apperrors.WithMessage(apperrors.ErrValidation, strings.Join(parts, "; "))
}

func (tv *TransactionValidator) transactionRules(sl validator.StructLevel) {
	t := sl.Current().Interface().(models.Transaction)

	if t.Date.IsZero() {
		sl.ReportError(t.Date, "date", "Date", "required", "")
	}

	switch t.Type {
	case "", models.TransactionTypeExpense, models.TransactionTypeIncome, models.TransactionTypeInvestment:
	default:
		sl.ReportError(t.Type, "type", "Type", "transaction_type", "")
		return
	}

	if t.Type != models.TransactionTypeInvestment {
		switch {
		case t.Amount.IsZero():
			sl.ReportError(t.Amount, "amount", "Amount", "nonzero", "")
		case t.Type == models.TransactionTypeExpense && !t.Amount.IsNegative():
			sl.ReportError(t.Amount, "amount", "Amount", "negative", "")
		case t.Type == models.TransactionTypeIncome && !t.Amount.IsPositive():
			sl.ReportError(t.Amount, "amount", "Amount", "positive", "")
		}
		return
	}

	if !t.AssetType.Valid() {
		sl.ReportError(t.AssetType, "assetType", "AssetType", "asset_type", "")
	}
	if !t.Quantity.IsPositive() {
		sl.ReportError(t.Quantity, "quantity", "Quantity", "gt0", "")
	}
	if t.PurchasePrice.IsNegative() {
		sl.ReportError(t.PurchasePrice, "purchasePrice", "PurchasePrice", "gte0", "")
	}
	if t.Fees.IsNegative() {
		sl.ReportError(t.Fees, "fees", "Fees", "gte0", "")
	}
	if t.CurrentValue.IsNegative() {
		sl.ReportError(t.CurrentValue, "currentValue", "CurrentValue", "gte0", "")
	}

	switch {
	case t.AssetType == models.AssetTypeGold && t.GoldCategory == "":
		sl.ReportError(t.GoldCategory, "goldCategory", "GoldCategory", "required", "")
	case t.AssetType == models.AssetTypeGold && tv.knownGoldCategory != nil && !tv.knownGoldCategory(t.GoldCategory):
		sl.ReportError(t.GoldCategory, "goldCategory", "GoldCategory", "gold_category", "")
	case t.AssetType != models.AssetTypeGold && t.GoldCategory != "":
		sl.ReportError(t.GoldCategory, "goldCategory", "GoldCategory", "gold_only", "")
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
