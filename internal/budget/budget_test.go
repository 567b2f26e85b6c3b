package budget

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"budgetwatch/internal/core"
)

func testPlan() *Plan {
	return &Plan{
		Mapping: map[string]string{
			"🥕  Groceries":  "🥕 Groceries",
			"🥯  Dining Out": "🍽️ Dining Out",
			"🛋️  Shopping":   "🛒 Shopping & Personal",
		},
		Targets: map[string]core.Money{
			"🥕 Groceries":           {Cents: 90000},
			"🍽️ Dining Out":          {Cents: 25000},
			"🛒 Shopping & Personal": {Cents: 67500},
		},
	}
}

func TestMapperExactMatchCaseInsensitive(t *testing.T) {
	m := NewMapper(map[string]string{"🥕  Groceries": "🥕 Groceries"})

	if got := m.Map("🥕  Groceries"); got != "🥕 Groceries" {
		t.Errorf("Map = %q, want mapped category", got)
	}
	if got := m.Map("🥕  GROCERIES"); got != "🥕 Groceries" {
		t.Errorf("Map should be case-insensitive, got %q", got)
	}
	if got := m.Map("  🥕  Groceries  "); got != "🥕 Groceries" {
		t.Errorf("Map should trim whitespace, got %q", got)
	}
	// Unknown labels pass through unchanged.
	if got := m.Map("Mortgage"); got != "Mortgage" {
		t.Errorf("unmapped label should pass through, got %q", got)
	}
}

func TestAggregate(t *testing.T) {
	plan := testPlan()
	mapper := NewMapper(plan.Mapping)

	txns := []core.Transaction{
		{AmountMilli: -450000, CategoryName: "🥕  Groceries"}, // $450 spend
		{AmountMilli: -500000, CategoryName: "🥕  Groceries"}, // $500 spend
		{AmountMilli: 120000, CategoryName: "🥕  Groceries"},  // inflow, ignored
		{AmountMilli: -80000, CategoryName: "Mortgage"},       // no target, dropped
		{AmountMilli: -12500, CategoryName: "🥯  Dining Out"},
	}

	spending := Aggregate(plan, mapper, txns)

	if got := spending["🥕 Groceries"].Cents; got != 95000 {
		t.Errorf("groceries = %d cents, want 95000", got)
	}
	if got := spending["🍽️ Dining Out"].Cents; got != 1250 {
		t.Errorf("dining = %d cents, want 1250", got)
	}
	if _, ok := spending["Mortgage"]; ok {
		t.Error("unplanned category should not be aggregated")
	}
}

func TestAggregateOrderInvariant(t *testing.T) {
	plan := testPlan()
	mapper := NewMapper(plan.Mapping)

	txns := []core.Transaction{
		{AmountMilli: -450000, CategoryName: "🥕  Groceries"},
		{AmountMilli: -12500, CategoryName: "🥯  Dining Out"},
		{AmountMilli: -33000, CategoryName: "🛋️  Shopping"},
		{AmountMilli: 99000, CategoryName: "🥯  Dining Out"},
		{AmountMilli: -500000, CategoryName: "🥕  Groceries"},
	}

	want := Aggregate(plan, mapper, txns)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]core.Transaction, len(txns))
		copy(shuffled, txns)
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(plan, mapper, shuffled)
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: category count %d != %d", i, len(got), len(want))
		}
		for category, amount := range want {
			if got[category] != amount {
				t.Fatalf("shuffle %d: %s = %v, want %v", i, category, got[category], amount)
			}
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	plan := testPlan()
	spending := map[string]core.Money{
		"🥕 Groceries":  {Cents: 95000}, // $950 of $900
		"🍽️ Dining Out": {Cents: 23000}, // $230 of $250 → 92%
	}

	metrics := ComputeMetrics(plan, spending)

	groceries := metrics["🥕 Groceries"]
	if math.Abs(groceries.Percentage-105.555) > 0.01 {
		t.Errorf("groceries percentage = %v, want ≈105.56", groceries.Percentage)
	}
	if groceries.Status != core.StatusOverBudget {
		t.Errorf("groceries status = %q, want over_budget", groceries.Status)
	}

	dining := metrics["🍽️ Dining Out"]
	if dining.Status != core.StatusCloseToLimit {
		t.Errorf("dining status = %q, want close_to_limit", dining.Status)
	}

	// Zero-spend categories must appear with percentage 0.
	shopping, ok := metrics["🛒 Shopping & Personal"]
	if !ok {
		t.Fatal("zero-spend category missing from metrics")
	}
	if shopping.Percentage != 0 || shopping.Status != core.StatusOnTrack {
		t.Errorf("zero-spend metric = %+v", shopping)
	}
}

func TestComputeMetricsZeroTarget(t *testing.T) {
	plan := &Plan{Targets: map[string]core.Money{"Misc": {Cents: 0}}}
	spending := map[string]core.Money{"Misc": {Cents: 5000}}

	metrics := ComputeMetrics(plan, spending)

	if got := metrics["Misc"].Percentage; got != 0 {
		t.Errorf("zero target must yield percentage 0, got %v", got)
	}
}

func TestComputeTotals(t *testing.T) {
	metrics := map[string]core.Metric{
		"a": {Spent: core.Money{Cents: 50000}, Target: core.Money{Cents: 100000}},
		"b": {Spent: core.Money{Cents: 25000}, Target: core.Money{Cents: 50000}},
	}

	totals := ComputeTotals(metrics)

	if totals.Spent.Cents != 75000 || totals.Budget.Cents != 150000 {
		t.Errorf("totals = %+v", totals)
	}
	if totals.Remaining.Cents != 75000 {
		t.Errorf("remaining = %d, want 75000", totals.Remaining.Cents)
	}
	if math.Abs(totals.Percentage-50) > 1e-9 {
		t.Errorf("percentage = %v, want 50", totals.Percentage)
	}
}

func TestLoadPlan(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		plan, err := LoadPlan("")
		if err != nil {
			t.Fatalf("LoadPlan: %v", err)
		}
		if !plan.HasTarget("🥕 Groceries") {
			t.Error("default plan should include groceries")
		}
		if plan.TotalBudget().Cents != 280100 {
			t.Errorf("default total budget = %d cents, want 280100", plan.TotalBudget().Cents)
		}
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.json")
		content, _ := json.Marshal(map[string]any{
			"mapping":         map[string]string{"Eating Out": "Dining"},
			"monthly_targets": map[string]float64{"Dining": 250, "Groceries": 900.50},
		})
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}

		plan, err := LoadPlan(path)
		if err != nil {
			t.Fatalf("LoadPlan: %v", err)
		}
		if got := plan.Targets["Groceries"].Cents; got != 90050 {
			t.Errorf("groceries target = %d cents, want 90050", got)
		}
		if plan.Mapping["Eating Out"] != "Dining" {
			t.Errorf("mapping not loaded: %v", plan.Mapping)
		}
	})

	t.Run("rejects non-positive targets", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.json")
		os.WriteFile(path, []byte(`{"monthly_targets":{"Dining":-5}}`), 0644)

		if _, err := LoadPlan(path); err == nil {
			t.Error("expected error for negative target")
		}
	})
}
