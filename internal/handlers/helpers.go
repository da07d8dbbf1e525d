package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/logger"
	"kumbara/internal/models"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// parseDate accepts a calendar date (YYYY-MM-DD, read as UTC midnight) or a
// full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseFilterQuery reads ?filter=&start_date=&end_date=. It returns nil when
// no filter was given so the service falls back to the active filter.
func parseFilterQuery(c *gin.Context) (*models.Filter, error) {
	kind := c.Query("filter")
	start := c.Query("start_date")
	end := c.Query("end_date")
	if kind == "" && start == "" && end == "" {
		return nil, nil
	}
	if kind == "" {
		kind = string(models.FilterCustom)
	}

	f := &models.Filter{Kind: models.FilterKind(kind)}
	if !f.Kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFilter, "unsupported filter kind: "+kind)
	}
	if f.Kind != models.FilterCustom {
		return f, nil
	}
	if start == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFilter, "custom filter needs start_date")
	}

	startDate, err := parseDate(start)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFilter, "invalid start_date format, use YYYY-MM-DD or RFC3339")
	}
	f.CustomRange = &models.DateRange{StartDate: startDate}
	if end != "" {
		endDate, err := parseDate(end)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidFilter, "invalid end_date format, use YYYY-MM-DD or RFC3339")
		}
		if endDate.Before(startDate) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidFilter, "end_date is before start_date")
		}
		f.CustomRange.EndDate = &endDate
	}
	return f, nil
}
