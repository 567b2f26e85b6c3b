package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"budgetwatch/internal/budget"
	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
	"budgetwatch/internal/storage"
)

type sourceStub struct {
	transactions []core.Transaction
	err          error
	gotSince     time.Time
}

func (s *sourceStub) TransactionsSince(_ context.Context, since time.Time) ([]core.Transaction, error) {
	s.gotSince = since
	return s.transactions, s.err
}

type publisherStub struct {
	published []core.Alert
	err       error
}

func (p *publisherStub) PublishAlert(_ context.Context, a core.Alert) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

func newTestStore(t *testing.T) *storage.HistoryStore {
	t.Helper()
	store, err := storage.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunFullPipeline(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)

	source := &sourceStub{transactions: []core.Transaction{
		{AmountMilli: -500000, CategoryName: "🥕  Groceries"},
		{AmountMilli: -450000, CategoryName: "🥕 Groceries"},
		{AmountMilli: -100000, CategoryName: "🥯  Dining Out"},
		{AmountMilli: 250000, CategoryName: "🥕 Groceries"},  // inflow, skipped
		{AmountMilli: -75000, CategoryName: "Unknown Stuff"}, // no target, skipped
	}}
	publisher := &publisherStub{}
	store := newTestStore(t)
	logger := log.New(log.DefaultConfig())

	p := NewRunProcessor(source, store, budget.DefaultPlan(), 90, publisher, logger).
		WithClock(fixedClock(now))

	b, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !source.gotSince.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("fetch since = %v, want start of month", source.gotSince)
	}

	// 500 + 450 = 950 spent against a 900 target.
	groceries := b.Metrics["🥕 Groceries"]
	if groceries.Spent != 950 {
		t.Errorf("groceries spent = %v", groceries.Spent)
	}
	if math.Abs(groceries.Percentage-105.6) > 0.1 {
		t.Errorf("groceries percentage = %v", groceries.Percentage)
	}
	if groceries.Status != "over_budget" {
		t.Errorf("groceries status = %q", groceries.Status)
	}

	// Zero-spend categories still appear.
	if _, ok := b.Metrics["🚗 Transportation"]; !ok {
		t.Error("zero-spend category missing from metrics")
	}

	// One danger alert for groceries, persisted and published.
	var danger []core.Alert
	for _, a := range b.Alerts {
		if a.Severity == "danger" {
			danger = append(danger, core.Alert{Category: a.Category})
		}
	}
	if len(danger) != 1 || danger[0].Category != "🥕 Groceries" {
		t.Errorf("danger alerts = %+v", b.Alerts)
	}
	if len(publisher.published) != 1 || publisher.published[0].Category != "🥕 Groceries" {
		t.Errorf("published alerts = %+v", publisher.published)
	}
	stored := store.AlertsSince(context.Background(), now.Add(-time.Hour), 10)
	if len(stored) != 1 {
		t.Errorf("stored alerts = %d, want 1", len(stored))
	}

	// No 7-day history yet, so no trends.
	if len(b.Trends) != 0 {
		t.Errorf("trends = %+v, want none on first run", b.Trends)
	}

	if b.Totals.Spent != 1050 {
		t.Errorf("total spent = %v", b.Totals.Spent)
	}
	if b.Date != "2025-08-15" {
		t.Errorf("bundle date = %q", b.Date)
	}
}

func TestRunSameDayIdempotent(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	source := &sourceStub{transactions: []core.Transaction{
		{AmountMilli: -300000, CategoryName: "🥕 Groceries"},
	}}
	store := newTestStore(t)
	logger := log.New(log.DefaultConfig())

	p := NewRunProcessor(source, store, budget.DefaultPlan(), 90, nil, logger).
		WithClock(fixedClock(now))

	if _, err := p.Run(context.Background(), false); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Second run the same day with a corrected feed replaces the snapshot.
	source.transactions = []core.Transaction{
		{AmountMilli: -400000, CategoryName: "🥕 Groceries"},
	}
	if _, err := p.Run(context.Background(), false); err != nil {
		t.Fatalf("second run: %v", err)
	}

	history := store.SpendingSince(context.Background(), now.Add(-24*time.Hour))
	snaps := history["🥕 Groceries"]
	if len(snaps) != 1 {
		t.Fatalf("snapshots for groceries = %d, want 1", len(snaps))
	}
	if snaps[0].Spent.Cents != 40000 {
		t.Errorf("snapshot spent = %d cents, want replaced value 40000", snaps[0].Spent.Cents)
	}
}

func TestRunTrendAfterWeekOfHistory(t *testing.T) {
	store := newTestStore(t)
	logger := log.New(log.DefaultConfig())
	source := &sourceStub{}

	p := NewRunProcessor(source, store, budget.DefaultPlan(), 90, nil, logger)

	// Seven daily runs with rising groceries spend.
	var last *time.Time
	for day := 9; day <= 15; day++ {
		now := time.Date(2025, 8, day, 10, 0, 0, 0, time.UTC)
		last = &now
		source.transactions = []core.Transaction{
			{AmountMilli: int64(-day * 50000), CategoryName: "🥕 Groceries"},
		}
		if _, err := p.WithClock(fixedClock(now)).Run(context.Background(), false); err != nil {
			t.Fatalf("run day %d: %v", day, err)
		}
	}

	bundle, err := p.WithClock(fixedClock(*last)).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("final run: %v", err)
	}

	tr, ok := bundle.Trends["🥕 Groceries"]
	if !ok {
		t.Fatal("expected a trend after 7 days of history")
	}
	// Spend rises $50/day, well past the increasing threshold.
	if tr.Direction != "increasing" {
		t.Errorf("direction = %q", tr.Direction)
	}
	if tr.Slope <= 5 {
		t.Errorf("slope = %v, want > 5", tr.Slope)
	}
	if tr.ProjectedTotal < bundle.Metrics["🥕 Groceries"].Spent {
		t.Errorf("projection %v below current spend", tr.ProjectedTotal)
	}
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	store := newTestStore(t)
	logger := log.New(log.DefaultConfig())
	source := &sourceStub{err: errors.New("provider down")}

	p := NewRunProcessor(source, store, budget.DefaultPlan(), 90, nil, logger)

	if _, err := p.Run(context.Background(), false); err == nil {
		t.Fatal("expected fetch failure to abort the run")
	}
}

func TestRunPublishFailureDegrades(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	store := newTestStore(t)
	logger := log.New(log.DefaultConfig())
	source := &sourceStub{transactions: []core.Transaction{
		{AmountMilli: -950000, CategoryName: "🥕 Groceries"},
	}}
	publisher := &publisherStub{err: errors.New("broker unreachable")}

	p := NewRunProcessor(source, store, budget.DefaultPlan(), 90, publisher, logger).
		WithClock(fixedClock(now))

	b, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run must survive publish failure: %v", err)
	}
	if len(b.Alerts) == 0 {
		t.Error("alert missing from bundle despite publish failure")
	}
	if len(store.AlertsSince(context.Background(), now.Add(-time.Hour), 10)) == 0 {
		t.Error("alert not persisted despite publish failure")
	}
}
