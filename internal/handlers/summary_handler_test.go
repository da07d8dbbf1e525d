package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kumbara/internal/aggregate"
	apperrors "kumbara/internal/errors"
	"kumbara/internal/models"
)

func setupSummaryRouter(handler *SummaryHandler) *gin.Engine {
	r := gin.New()
	r.GET("/totals", handler.GetTotals)
	r.GET("/investments", handler.GetInvestments)
	r.GET("/investments/:id/gain-loss", handler.GetGainLoss)
	return r
}

func TestSummaryHandler_GetTotals(t *testing.T) {
	t.Run("returns totals", func(t *testing.T) {
		var got *models.Filter
		svc := &mockTrackerService{
			getFilteredTotalsFn: func(_ context.Context, f *models.Filter) (*aggregate.Totals, error) {
				got = f
				return &aggregate.Totals{
					Income:   decimal.NewFromInt(1000),
					Expenses: decimal.NewFromInt(-250),
					Total:    decimal.NewFromInt(750),
				}, nil
			},
		}
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/totals?filter=thisMonth", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || got.Kind != models.FilterThisMonth {
			t.Errorf("expected thisMonth filter, got %+v", got)
		}
		totals := parseJSON(t, rec)["totals"].(map[string]interface{})
		if totals["total"] != "750" {
			t.Errorf("expected total \"750\", got %v", totals["total"])
		}
		if totals["expenses"] != "-250" {
			t.Errorf("expected expenses \"-250\", got %v", totals["expenses"])
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		r := setupSummaryRouter(NewSummaryHandler(&mockTrackerService{}))

		rec := doRequest(r, "GET", "/totals?filter=custom&start_date=nope", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_FILTER")
	})
}

func TestSummaryHandler_GetInvestments(t *testing.T) {
	svc := &mockTrackerService{
		getInvestmentsFn: func(context.Context) []models.Transaction {
			return []models.Transaction{{ID: "a", Type: models.TransactionTypeInvestment}}
		},
	}
	r := setupSummaryRouter(NewSummaryHandler(svc))

	rec := doRequest(r, "GET", "/investments", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	invs := parseJSON(t, rec)["investments"].([]interface{})
	if len(invs) != 1 {
		t.Errorf("expected 1 investment, got %d", len(invs))
	}
}

func TestSummaryHandler_GetGainLoss(t *testing.T) {
	t.Run("returns result", func(t *testing.T) {
		svc := &mockTrackerService{
			calculateGainLossFn: func(_ context.Context, id string) (*aggregate.GainLoss, error) {
				if id != "inv-1" {
					t.Errorf("unexpected id %s", id)
				}
				return &aggregate.GainLoss{
					CostBasis:    decimal.NewFromInt(210),
					CurrentValue: decimal.NewFromInt(260),
					GainLoss:     decimal.NewFromInt(50),
					Percentage:   decimal.RequireFromString("23.81"),
				}, nil
			},
		}
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/investments/inv-1/gain-loss", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		gl := parseJSON(t, rec)["gainLoss"].(map[string]interface{})
		if gl["percentage"] != "23.81" {
			t.Errorf("expected percentage 23.81, got %v", gl["percentage"])
		}
	})

	t.Run("returns 404", func(t *testing.T) {
		svc := &mockTrackerService{
			calculateGainLossFn: func(context.Context, string) (*aggregate.GainLoss, error) {
				return nil, apperrors.ErrInvestmentNotFound
			},
		}
		r := setupSummaryRouter(NewSummaryHandler(svc))

		rec := doRequest(r, "GET", "/investments/x/gain-loss", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVESTMENT_NOT_FOUND")
	})
}
