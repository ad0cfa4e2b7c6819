package odds

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/ellavondegurechaff/packforge/packforge/database/memstore"
	"github.com/ellavondegurechaff/packforge/packforge/database/models"
	"github.com/ellavondegurechaff/packforge/packforge/economy"
	"github.com/ellavondegurechaff/packforge/packforge/interfaces"
)

func newTable(t *testing.T) (*Table, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	table, err := NewTable(store, TableConfig{})
	if err != nil {
		t.Fatal(err)
	}
	return table, store
}

func TestTable_SetAndGet(t *testing.T) {
	table, _ := newTable(t)
	ctx := context.Background()

	if err := table.Set(ctx, "greatball", []Rate{{models.TierC, 10}, {models.TierD, 90}}); err != nil {
		t.Fatal(err)
	}
	got, err := table.Get(ctx, "greatball")
	if err != nil {
		t.Fatal(err)
	}
	want := []Rate{{models.TierD, 90}, {models.TierC, 10}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Get() = %v, want %v", got, want)
	}

	// Replacing the table invalidates the cached copy.
	if err := table.Set(ctx, "greatball", []Rate{{models.TierB, 100}}); err != nil {
		t.Fatal(err)
	}
	got, err = table.Get(ctx, "greatball")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Tier != models.TierB {
		t.Errorf("Get() after Set = %v, want only B", got)
	}
}

func TestTable_SetRejectsMalformed(t *testing.T) {
	table, store := newTable(t)
	ctx := context.Background()

	err := table.Set(ctx, "pokeball", []Rate{{models.TierD, 80}})
	if !errors.Is(err, economy.ErrMalformedRateTable) {
		t.Fatalf("Set() error = %v, want ErrMalformedRateTable", err)
	}

	_ = store.RunInTx(ctx, func(ctx context.Context, tx interfaces.Tx) error {
		rows, _ := tx.ActivePullRates(ctx, "pokeball")
		if len(rows) != 0 {
			t.Errorf("malformed table was written: %v", rows)
		}
		return nil
	})
}

func TestTable_SeedDefaults(t *testing.T) {
	table, _ := newTable(t)
	ctx := context.Background()

	if err := table.Set(ctx, models.PackTypePokeball, []Rate{{models.TierD, 100}}); err != nil {
		t.Fatal(err)
	}
	if err := table.SeedDefaults(ctx); err != nil {
		t.Fatal(err)
	}

	pokeball, _ := table.Get(ctx, models.PackTypePokeball)
	if len(pokeball) != 1 {
		t.Errorf("existing table was overwritten: %v", pokeball)
	}
	for _, packType := range []string{models.PackTypeGreatball, models.PackTypeUltraball, models.PackTypeMasterball} {
		rates, err := table.Get(ctx, packType)
		if err != nil {
			t.Fatal(err)
		}
		if err := Validate(rates); err != nil {
			t.Errorf("%s default table invalid: %v", packType, err)
		}
	}
}

func TestAudit(t *testing.T) {
	var seed atomic.Uint64
	newRand := func() Rand {
		return rand.New(rand.NewPCG(seed.Add(1), 42))
	}

	report, err := Audit(context.Background(), DefaultRates[models.PackTypeGreatball], 200000, 4, newRand)
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for _, c := range report.Counts {
		total += c
	}
	if total != 200000 {
		t.Errorf("counted %d draws, want 200000", total)
	}
	if report.DegreesOfFreedom != 4 {
		t.Errorf("degrees of freedom = %d, want 4", report.DegreesOfFreedom)
	}
	if report.PValue < 0.0001 {
		t.Errorf("p-value = %g, sampler disagrees with its table (chi2 = %.2f)", report.PValue, report.ChiSquare)
	}
}

func TestAudit_RejectsBadInput(t *testing.T) {
	if _, err := Audit(context.Background(), []Rate{{models.TierD, 50}}, 10, 1, nil); !errors.Is(err, economy.ErrMalformedRateTable) {
		t.Errorf("error = %v, want ErrMalformedRateTable", err)
	}
	if _, err := Audit(context.Background(), DefaultRates[models.PackTypePokeball], 0, 1, nil); err == nil {
		t.Error("expected error for zero draws")
	}
}
