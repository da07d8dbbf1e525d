package valuator

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kumbara/internal/kvstore"
	"kumbara/internal/ledger"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/pricesource"
	"kumbara/internal/testutil"
)

func init() {
	logger.Replace(zap.NewNop())
}

// mockLedger counts Revalue calls.
type mockLedger struct {
	snap         ledger.Snapshot
	revalueCalls int
}

var _ Ledger = (*mockLedger)(nil)

func (m *mockLedger) Snapshot() ledger.Snapshot { return m.snap }

func (m *mockLedger) Revalue(_ context.Context, updates []ledger.Revaluation) (ledger.Snapshot, int) {
	m.revalueCalls++
	return m.snap, len(updates)
}

func prices(kv ...string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = decimal.RequireFromString(kv[i+1])
	}
	return out
}

func TestDiff(t *testing.T) {
	day := testutil.Day(2024, 1, 1)
	stale := testutil.NewGoldInvestment(pricesource.GramAltin, "3000", "2", "6000", day)
	current := testutil.NewGoldInvestment(pricesource.CeyrekYeni, "5000", "1", "5694", day)
	unpriced := testutil.NewGoldInvestment("Bilinmeyen", "1", "1", "1", day)
	stock := testutil.NewInvestment(models.AssetTypeStock, "10", "1", "0", "10", day)

	got := Diff([]models.Transaction{stale, current, unpriced, stock}, prices(
		pricesource.GramAltin, "3500",
		pricesource.CeyrekYeni, "5694.00",
	))

	if len(got) != 1 {
		t.Fatalf("expected 1 revaluation, got %d: %+v", len(got), got)
	}
	if got[0].ID != stale.ID {
		t.Errorf("revalued %s, want %s", got[0].ID, stale.ID)
	}
	testutil.AssertDecimal(t, "new value", got[0].CurrentValue, "7000")
}

func TestApply_NoChangesSkipsLedger(t *testing.T) {
	day := testutil.Day(2024, 1, 1)
	m := &mockLedger{snap: ledger.Snapshot{Transactions: []models.Transaction{
		testutil.NewGoldInvestment(pricesource.GramAltin, "3000", "2", "7000", day),
	}}}

	if n := New(m).Apply(context.Background(), prices(pricesource.GramAltin, "3500")); n != 0 {
		t.Errorf("Apply = %d, want 0", n)
	}
	if m.revalueCalls != 0 {
		t.Errorf("expected no Revalue call, got %d", m.revalueCalls)
	}
}

func TestApply_IdempotentAgainstRealLedger(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(kvstore.NewMemoryStore())
	day := testutil.Day(2024, 1, 1)
	gold, _ := l.Add(ctx, testutil.NewGoldInvestment(pricesource.GramAltin, "3000", "2", "6000", day))
	l.Add(ctx, testutil.NewGoldInvestment(pricesource.HasAltin, "3000", "1.5", "4500", day))

	v := New(l)
	p := prices(pricesource.GramAltin, "3500", pricesource.HasAltin, "3000")

	if n := v.Apply(ctx, p); n != 1 {
		t.Fatalf("first Apply = %d, want 1", n)
	}
	version := l.Version()

	if n := v.Apply(ctx, p); n != 0 {
		t.Errorf("second Apply = %d, want 0", n)
	}
	if l.Version() != version {
		t.Errorf("second Apply mutated the ledger: version %d -> %d", version, l.Version())
	}

	got, _ := l.Get(gold.ID)
	testutil.AssertDecimal(t, "currentValue", got.CurrentValue, "7000")
}
