package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kumbara/internal/services"
)

// SummaryHandler serves totals and investment results.
type SummaryHandler struct {
	tracker services.TrackerServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(tracker services.TrackerServicer) *SummaryHandler {
	return &SummaryHandler{tracker: tracker}
}

// GetTotals handles GET /totals. It accepts the same filter query as the
// transaction list.
func (h *SummaryHandler) GetTotals(c *gin.Context) {
	filter, err := parseFilterQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.tracker.GetFilteredTotals(c.Request.Context(), filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"totals": totals})
}

// GetInvestments handles GET /investments. Investments are never filtered by date.
func (h *SummaryHandler) GetInvestments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"investments": h.tracker.GetInvestments(c.Request.Context())})
}

// GetGainLoss handles GET /investments/:id/gain-loss.
func (h *SummaryHandler) GetGainLoss(c *gin.Context) {
	result, err := h.tracker.CalculateGainLoss(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gainLoss": result})
}
