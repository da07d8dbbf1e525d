package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/models"
	"kumbara/internal/pagination"
	"kumbara/internal/services"
)

// TransactionHandler handles ledger requests.
type TransactionHandler struct {
	tracker services.TrackerServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(tracker services.TrackerServicer) *TransactionHandler {
	return &TransactionHandler{tracker: tracker}
}

// TransactionRequest is the payload for creating or editing a transaction.
// Investment fields are ignored for income and expenses. An omitted
// currentValue defaults to purchasePrice * quantity; an explicit 0 is kept.
type TransactionRequest struct {
	ID            string                 `json:"id"`
	Description   string                 `json:"description" binding:"max=500"`
	Amount        decimal.Decimal        `json:"amount"`
	Date          string                 `json:"date" binding:"required"`
	Category      string                 `json:"category" binding:"max=100"`
	IsRecurring   bool                   `json:"isRecurring"`
	Type          models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	AssetType     models.AssetType       `json:"assetType" binding:"omitempty,asset_type"`
	Symbol        string                 `json:"symbol" binding:"max=20"`
	Name          string                 `json:"name" binding:"max=200"`
	Quantity      decimal.Decimal        `json:"quantity"`
	PurchasePrice decimal.Decimal        `json:"purchasePrice"`
	CurrentValue  *decimal.Decimal       `json:"currentValue"`
	Fees          decimal.Decimal        `json:"fees"`
	GoldCategory  string                 `json:"goldCategory"`
}

func (r TransactionRequest) toModel() (models.Transaction, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return models.Transaction{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use YYYY-MM-DD or RFC3339")
	}
	t := models.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		Date:        date,
		Category:    r.Category,
		IsRecurring: r.IsRecurring,
		Type:        r.Type,
	}
	if r.Type == models.TransactionTypeInvestment {
		t.AssetType = r.AssetType
		t.Symbol = r.Symbol
		t.Name = r.Name
		t.Quantity = r.Quantity
		t.PurchasePrice = r.PurchasePrice
		t.CurrentValue = r.PurchasePrice.Mul(r.Quantity)
		if r.CurrentValue != nil {
			t.CurrentValue = *r.CurrentValue
		}
		t.Fees = r.Fees
		t.GoldCategory = r.GoldCategory
	}
	return t, nil
}

// ReplaceTransactionsRequest replaces the whole ledger.
type ReplaceTransactionsRequest struct {
	Transactions []TransactionRequest `json:"transactions" binding:"dive"`
}

// ListTransactions handles GET /transactions.
// @Summary     List transactions
// @Description Transactions inside the given filter window (or the active filter), newest first
// @Tags        transactions
// @Produce     json
// @Param       filter     query string false "last30Days, thisMonth, allTime or custom"
// @Param       start_date query string false "Custom range start (YYYY-MM-DD)"
// @Param       end_date   query string false "Custom range end, inclusive (YYYY-MM-DD)"
// @Param       page       query int    false "Page number"
// @Param       page_size  query int    false "Items per page (max 500)"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseFilterQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txns, err := h.tracker.GetFilteredTransactions(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(txns, page))
}

// CreateTransaction handles POST /transactions.
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	t, err := req.toModel()
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, err := h.tracker.AddTransaction(c.Request.Context(), t)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": created})
}

// UpdateTransaction handles PUT /transactions/:id.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	t, err := req.toModel()
	if err != nil {
		respondWithError(c, err)
		return
	}
	t.ID = c.Param("id")

	updated, err := h.tracker.UpdateTransaction(c.Request.Context(), t)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": updated})
}

// DeleteTransaction handles DELETE /transactions/:id.
// @Summary     Delete a transaction
// @Tags        transactions
// @Param       id path string true "Transaction ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.tracker.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceTransactions handles PUT /transactions, used for imports and restores.
// @Summary     Replace all transactions
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body ReplaceTransactionsRequest true "New ledger contents"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [put]
func (h *TransactionHandler) ReplaceTransactions(c *gin.Context) {
	var req ReplaceTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txns := make([]models.Transaction, 0, len(req.Transactions))
	for _, r := range req.Transactions {
		t, err := r.toModel()
		if err != nil {
			respondWithError(c, err)
			return
		}
		txns = append(txns, t)
	}

	stored, err := h.tracker.SetAllTransactions(c.Request.Context(), txns)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": stored, "count": len(stored)})
}
