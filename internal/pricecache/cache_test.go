package pricecache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/kvstore"
	"kumbara/internal/logger"
	"kumbara/internal/models"
	"kumbara/internal/pricesource"
	"kumbara/internal/testutil"
)

func init() {
	logger.Replace(zap.NewNop())
}

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestCache(store kvstore.Store) *Cache {
	return New(store, WithClock(func() time.Time { return fixedNow }))
}

func TestMerge_FallsBackToDefaultsWithoutPriorSnapshot(t *testing.T) {
	c := newTestCache(kvstore.NewMemoryStore())

	merged, err := c.Merge(context.Background(), map[string]decimal.Decimal{
		pricesource.GramAltin:  d("3600.50"),
		pricesource.CeyrekYeni: d("5900"),
	})
	testutil.AssertNoError(t, err)

	if len(merged) != 16 {
		t.Fatalf("expected 16 categories, got %d", len(merged))
	}
	testutil.AssertDecimal(t, pricesource.GramAltin, merged[pricesource.GramAltin], "3600.50")
	testutil.AssertDecimal(t, pricesource.CeyrekYeni, merged[pricesource.CeyrekYeni], "5900")
	for _, name := range pricesource.CategoryNames() {
		if name == pricesource.GramAltin || name == pricesource.CeyrekYeni {
			continue
		}
		if !merged[name].Equal(defaultPrices[name]) {
			t.Errorf("%s = %s, want default %s", name, merged[name], defaultPrices[name])
		}
	}

	snap, err := c.Get(context.Background())
	testutil.AssertNoError(t, err)
	if !snap.LastUpdate.Equal(fixedNow) {
		t.Errorf("LastUpdate = %s, want %s", snap.LastUpdate, fixedNow)
	}
}

func TestMerge_FallsBackToPriorSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	prior := make(map[string]decimal.Decimal)
	for _, name := range pricesource.CategoryNames() {
		prior[name] = d("100")
	}
	testutil.AssertNoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyGoldPrices, prior))
	testutil.AssertNoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyLastGoldUpdate, fixedNow.Add(-time.Hour)))

	c := newTestCache(store)
	merged, err := c.Merge(ctx, map[string]decimal.Decimal{
		pricesource.HasAltin: d("3500"),
		pricesource.TamYeni:  d("23000"),
	})
	testutil.AssertNoError(t, err)

	if len(merged) != 16 {
		t.Fatalf("expected 16 categories, got %d", len(merged))
	}
	fresh := 0
	for name, price := range merged {
		switch name {
		case pricesource.HasAltin:
			testutil.AssertDecimal(t, name, price, "3500")
			fresh++
		case pricesource.TamYeni:
			testutil.AssertDecimal(t, name, price, "23000")
			fresh++
		default:
			testutil.AssertDecimal(t, name, price, "100")
		}
	}
	if fresh != 2 {
		t.Errorf("expected 2 fresh prices, got %d", fresh)
	}
}

func TestMerge_EmptyFetchStillUpdatesTimestamp(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	c := newTestCache(store)

	merged, err := c.Merge(ctx, nil)
	testutil.AssertNoError(t, err)
	if len(merged) != 16 {
		t.Fatalf("expected full default table, got %d", len(merged))
	}

	var stored time.Time
	testutil.AssertNoError(t, kvstore.GetJSON(ctx, store, kvstore.KeyLastGoldUpdate, &stored))
	if !stored.Equal(fixedNow) {
		t.Errorf("persisted lastUpdate = %s, want %s", stored, fixedNow)
	}
}

func TestMerge_IgnoresNonPositivePrices(t *testing.T) {
	c := newTestCache(kvstore.NewMemoryStore())
	merged, err := c.Merge(context.Background(), map[string]decimal.Decimal{
		pricesource.GramAltin: decimal.Zero,
	})
	testutil.AssertNoError(t, err)
	if !merged[pricesource.GramAltin].Equal(defaultPrices[pricesource.GramAltin]) {
		t.Errorf("zero price should fall back to default, got %s", merged[pricesource.GramAltin])
	}
}

func TestMerge_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)

	c := newTestCache(store)
	_, err := c.Merge(ctx, map[string]decimal.Decimal{pricesource.GramAltin: d("3700")})
	testutil.AssertNoError(t, err)

	reloaded := newTestCache(store)
	snap, err := reloaded.Get(ctx)
	testutil.AssertNoError(t, err)
	if snap == nil {
		t.Fatal("expected a persisted snapshot")
	}
	if len(snap.Prices) != 16 {
		t.Errorf("expected 16 persisted prices, got %d", len(snap.Prices))
	}
	testutil.AssertDecimal(t, pricesource.GramAltin, snap.Prices[pricesource.GramAltin], "3700")
	if !snap.LastUpdate.Equal(fixedNow) {
		t.Errorf("LastUpdate = %s, want %s", snap.LastUpdate, fixedNow)
	}
}

func TestMerge_PersistFailureKeepsMemory(t *testing.T) {
	store := testutil.NewFailingStore()
	store.FailWrites(true)
	c := newTestCache(store)

	_, err := c.Merge(context.Background(), map[string]decimal.Decimal{pricesource.GramAltin: d("3800")})
	testutil.AssertNoError(t, err)

	p, ok := c.Price(pricesource.GramAltin)
	if !ok {
		t.Fatal("expected a price")
	}
	testutil.AssertDecimal(t, "in-memory price", p, "3800")
}

func TestMerge_AfterCloseIsNoop(t *testing.T) {
	store := kvstore.NewMemoryStore()
	c := newTestCache(store)
	c.Close()

	_, err := c.Merge(context.Background(), map[string]decimal.Decimal{pricesource.GramAltin: d("1")})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Merge after Close error = %v, want ErrClosed", err)
	}
	keys, _ := store.GetAllKeys(context.Background())
	if len(keys) != 0 {
		t.Errorf("expected nothing persisted, got %v", keys)
	}
}

func TestMerge_PublishesEvent(t *testing.T) {
	c := newTestCache(kvstore.NewMemoryStore())
	ch, cancel := c.Subscribe(1)
	defer cancel()

	_, err := c.Merge(context.Background(), nil)
	testutil.AssertNoError(t, err)

	select {
	case ev := <-ch:
		if ev.Snapshot == nil || len(ev.Snapshot.Prices) != 16 {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected a merge event")
	}
}

func TestGet_ReadFailure(t *testing.T) {
	store := testutil.NewFailingStore()
	store.FailReads(true)
	c := newTestCache(store)

	_, err := c.Get(context.Background())
	testutil.AssertAppError(t, err, apperrors.ErrPersistence.Code)

	store.FailReads(false)
	snap, err := c.Get(context.Background())
	testutil.AssertNoError(t, err)
	if snap != nil {
		t.Errorf("expected empty cache, got %+v", snap)
	}
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name string
		snap *models.PriceSnapshot
		want bool
	}{
		{name: "nil", snap: nil, want: true},
		{name: "five_minutes", snap: &models.PriceSnapshot{LastUpdate: fixedNow.Add(-5 * time.Minute)}, want: false},
		{name: "exactly_threshold", snap: &models.PriceSnapshot{LastUpdate: fixedNow.Add(-15 * time.Minute)}, want: false},
		{name: "twenty_minutes", snap: &models.PriceSnapshot{LastUpdate: fixedNow.Add(-20 * time.Minute)}, want: true},
	}

	c := newTestCache(kvstore.NewMemoryStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsStale(tt.snap); got != tt.want {
				t.Errorf("IsStale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	t.Run("empty_cache_returns_defaults", func(t *testing.T) {
		c := newTestCache(kvstore.NewMemoryStore())
		got := c.Categories()
		if len(got) != 16 {
			t.Fatalf("expected 16 default categories, got %d", len(got))
		}
		if !reflect.DeepEqual(got[:len(PreferredOrder)], PreferredOrder) {
			t.Errorf("preferred categories should come first, got %v", got[:len(PreferredOrder)])
		}
	})

	t.Run("partial_cache_keeps_preferred_order", func(t *testing.T) {
		ctx := context.Background()
		store := kvstore.NewMemoryStore()
		testutil.AssertNoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyGoldPrices, map[string]string{
			"Zeta Altın":             "1",
			pricesource.GremseEski:   "2",
			pricesource.HasAltin:     "3",
			pricesource.GramAltin:    "4",
			pricesource.BesliAtaYeni: "5",
		}))

		c := newTestCache(store)
		_, err := c.Get(ctx)
		testutil.AssertNoError(t, err)

		want := []string{
			pricesource.GramAltin,
			pricesource.HasAltin,
			pricesource.BesliAtaYeni,
			pricesource.GremseEski,
			"Zeta Altın",
		}
		if got := c.Categories(); !reflect.DeepEqual(got, want) {
			t.Errorf("Categories = %v, want %v", got, want)
		}
	})
}

func TestPriceAndCurrentPrices(t *testing.T) {
	c := newTestCache(kvstore.NewMemoryStore())

	if got := c.CurrentPrices(); len(got) != 16 {
		t.Errorf("empty cache should serve the default table, got %d entries", len(got))
	}
	p, ok := c.Price(pricesource.GramAltin)
	if !ok {
		t.Fatal("expected default price")
	}
	testutil.AssertDecimal(t, "default gram", p, "3475.89")

	if _, ok := c.Price("Platin"); ok {
		t.Error("unknown category should have no price")
	}
	if !c.HasCategory(pricesource.AtaEski) || c.HasCategory("Platin") {
		t.Error("HasCategory mismatch")
	}
}

func TestReset(t *testing.T) {
	store := kvstore.NewMemoryStore()
	c := newTestCache(store)
	_, err := c.Merge(context.Background(), map[string]decimal.Decimal{pricesource.GramAltin: d("4000")})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, c.Reset(context.Background()))
	keys, err := store.GetAllKeys(context.Background())
	testutil.AssertNoError(t, err)
	if len(keys) != 0 {
		t.Errorf("expected stored prices to be removed, got %v", keys)
	}
	snap, err := c.Get(context.Background())
	testutil.AssertNoError(t, err)
	if snap != nil {
		t.Errorf("expected empty snapshot after Reset, got %+v", snap)
	}
}
