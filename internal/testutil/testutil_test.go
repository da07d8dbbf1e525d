package testutil_test

import (
	"context"
	"errors"
	"testing"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/kvstore"
	"kumbara/internal/models"
	"kumbara/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	if err := db.Table("kv_entries").Count(&count).Error; err != nil {
		t.Errorf("table kv_entries should exist after migration: %v", err)
	}
}

func TestFixtures(t *testing.T) {
	day := testutil.Day(2024, 3, 1)

	expense := testutil.NewExpense("-50", day, "Food")
	if expense.Type != models.TransactionTypeExpense || !expense.Amount.IsNegative() {
		t.Errorf("unexpected expense fixture: %+v", expense)
	}

	income := testutil.NewIncome("200", day, "Salary")
	if income.ID == expense.ID {
		t.Error("fixtures should get distinct ids")
	}

	gold := testutil.NewGoldInvestment("Gram Altın", "3000", "2", "6000", day)
	if !gold.IsGold() {
		t.Error("gold fixture should be a gold holding")
	}
	testutil.AssertDecimal(t, "cost basis", gold.CostBasis(), "6000")
}

func TestFailingStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewFailingStore()

	testutil.AssertNoError(t, s.Set(ctx, "k", "v"))
	s.FailWrites(true)
	if err := s.Set(ctx, "k", "w"); !errors.Is(err, testutil.ErrStoreDown) {
		t.Fatalf("Set error = %v, want ErrStoreDown", err)
	}
	if s.SetCalls() != 2 {
		t.Errorf("SetCalls = %d, want 2", s.SetCalls())
	}

	got, err := s.Get(ctx, "k")
	testutil.AssertNoError(t, err)
	if got != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	s.FailReads(true)
	if _, err := s.Get(ctx, "k"); err == nil {
		t.Error("expected read failure")
	}
	if _, err := s.Get(ctx, "missing"); errors.Is(err, kvstore.ErrNotFound) {
		t.Error("failing reads should not report not-found")
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, apperrors.Wrap(apperrors.ErrPersistence, errors.New("disk full")), "PERSISTENCE_ERROR")
}
