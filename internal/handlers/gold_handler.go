package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kumbara/internal/services"
)

// GoldHandler serves the gold price cache.
type GoldHandler struct {
	tracker services.TrackerServicer
}

// NewGoldHandler creates a new GoldHandler.
func NewGoldHandler(tracker services.TrackerServicer) *GoldHandler {
	return &GoldHandler{tracker: tracker}
}

// GetCategories handles GET /gold/categories.
func (h *GoldHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.tracker.GetGoldCategories(c.Request.Context())})
}

// GetPrices handles GET /gold/prices.
func (h *GoldHandler) GetPrices(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.GetCurrentPrices(c.Request.Context()))
}

// Refresh handles POST /gold/refresh. A failed fetch still answers 200; the
// result reports the fallback and the error text.
func (h *GoldHandler) Refresh(c *gin.Context) {
	result := h.tracker.ForceRefreshPrices(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"prices": h.tracker.GetCurrentPrices(c.Request.Context()),
	})
}
