package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kumbara/internal/aggregate"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/scheduler"
	"kumbara/internal/services"
	"kumbara/internal/validator"
)

// --- mock tracker service ---

type mockTrackerService struct {
	addTransactionFn          func(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	updateTransactionFn       func(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	deleteTransactionFn       func(ctx context.Context, id string) error
	setAllTransactionsFn      func(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error)
	getFilteredTransactionsFn func(ctx context.Context, filter *models.Filter) ([]models.Transaction, error)
	getFilteredTotalsFn       func(ctx context.Context, filter *models.Filter) (*aggregate.Totals, error)
	getInvestmentsFn          func(ctx context.Context) []models.Transaction
	calculateGainLossFn       func(ctx context.Context, id string) (*aggregate.GainLoss, error)
	getGoldCategoriesFn       func(ctx context.Context) []string
	getCurrentPricesFn        func(ctx context.Context) *services.PricesView
	forceRefreshPricesFn      func(ctx context.Context) *scheduler.RunResult
	getActiveFilterFn         func(ctx context.Context) models.Filter
	setActiveFilterFn         func(ctx context.Context, f models.Filter) (*models.Filter, error)
	resetDataFn               func(ctx context.Context) error
	subscribeFn               func(buffer int) (<-chan services.Event, func())
}

var _ services.TrackerServicer = (*mockTrackerService)(nil)

func (m *mockTrackerService) AddTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(ctx, t)
	}
	return &t, nil
}

func (m *mockTrackerService) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(ctx, t)
	}
	return &t, nil
}

func (m *mockTrackerService) DeleteTransaction(ctx context.Context, id string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, id)
	}
	return nil
}

func (m *mockTrackerService) SetAllTransactions(ctx context.Context, txns []models.Transaction) ([]models.Transaction, error) {
	if m.setAllTransactionsFn != nil {
		return m.setAllTransactionsFn(ctx, txns)
	}
	return txns, nil
}

func (m *mockTrackerService) GetFilteredTransactions(ctx context.Context, filter *models.Filter) ([]models.Transaction, error) {
	if m.getFilteredTransactionsFn != nil {
		return m.getFilteredTransactionsFn(ctx, filter)
	}
	return []models.Transaction{}, nil
}

func (m *mockTrackerService) GetFilteredTotals(ctx context.Context, filter *models.Filter) (*aggregate.Totals, error) {
	if m.getFilteredTotalsFn != nil {
		return m.getFilteredTotalsFn(ctx, filter)
	}
	return &aggregate.Totals{}, nil
}

func (m *mockTrackerService) GetInvestments(ctx context.Context) []models.Transaction {
	if m.getInvestmentsFn != nil {
		return m.getInvestmentsFn(ctx)
	}
	return []models.Transaction{}
}

func (m *mockTrackerService) CalculateGainLoss(ctx context.Context, id string) (*aggregate.GainLoss, error) {
	if m.calculateGainLossFn != nil {
		return m.calculateGainLossFn(ctx, id)
	}
	return &aggregate.GainLoss{}, nil
}

func (m *mockTrackerService) GetGoldCategories(ctx context.Context) []string {
	if m.getGoldCategoriesFn != nil {
		return m.getGoldCategoriesFn(ctx)
	}
	return []string{}
}

func (m *mockTrackerService) GetCurrentPrices(ctx context.Context) *services.PricesView {
	if m.getCurrentPricesFn != nil {
		return m.getCurrentPricesFn(ctx)
	}
	return &services.PricesView{}
}

func (m *mockTrackerService) ForceRefreshPrices(ctx context.Context) *scheduler.RunResult {
	if m.forceRefreshPricesFn != nil {
		return m.forceRefreshPricesFn(ctx)
	}
	return &scheduler.RunResult{}
}

func (m *mockTrackerService) GetActiveFilter(ctx context.Context) models.Filter {
	if m.getActiveFilterFn != nil {
		return m.getActiveFilterFn(ctx)
	}
	return models.Filter{Kind: models.FilterLast30Days}
}

func (m *mockTrackerService) SetActiveFilter(ctx context.Context, f models.Filter) (*models.Filter, error) {
	if m.setActiveFilterFn != nil {
		return m.setActiveFilterFn(ctx, f)
	}
	return &f, nil
}

func (m *mockTrackerService) ResetData(ctx context.Context) error {
	if m.resetDataFn != nil {
		return m.resetDataFn(ctx)
	}
	return nil
}

func (m *mockTrackerService) Subscribe(buffer int) (<-chan services.Event, func()) {
	if m.subscribeFn != nil {
		return m.subscribeFn(buffer)
	}
	ch := make(chan services.Event)
	close(ch)
	return ch, func() {}
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Replace(zap.NewNop())
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
