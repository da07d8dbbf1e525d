package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/models"
	"kumbara/internal/services"
)

// SettingsHandler handles filter preferences and data maintenance.
type SettingsHandler struct {
	tracker services.TrackerServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(tracker services.TrackerServicer) *SettingsHandler {
	return &SettingsHandler{tracker: tracker}
}

// SetFilterRequest represents the request payload for switching the active filter.
type SetFilterRequest struct {
	Kind      models.FilterKind `json:"kind" binding:"required,filter_kind"`
	StartDate *string           `json:"startDate"`
	EndDate   *string           `json:"endDate"`
}

// GetFilter handles GET /filter.
func (h *SettingsHandler) GetFilter(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"filter": h.tracker.GetActiveFilter(c.Request.Context())})
}

// SetFilter handles PUT /filter.
func (h *SettingsHandler) SetFilter(c *gin.Context) {
	var req SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidFilter, err.Error()))
		return
	}

	f := models.Filter{Kind: req.Kind}
	if req.StartDate != nil && *req.StartDate != "" {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidFilter, "invalid startDate format, use YYYY-MM-DD or RFC3339"))
			return
		}
		f.CustomRange = &models.DateRange{StartDate: start}
		if req.EndDate != nil && *req.EndDate != "" {
			end, err := parseDate(*req.EndDate)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidFilter, "invalid endDate format, use YYYY-MM-DD or RFC3339"))
				return
			}
			f.CustomRange.EndDate = &end
		}
	}

	active, err := h.tracker.SetActiveFilter(c.Request.Context(), f)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filter": active})
}

// ResetData handles DELETE /data.
func (h *SettingsHandler) ResetData(c *gin.Context) {
	if err := h.tracker.ResetData(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
