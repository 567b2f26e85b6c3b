// Package services orchestrates the report run: fetch, aggregate, persist,
// analyze, alert, assemble. Each run is one synchronous pass.
package services

import (
	"context"
	"fmt"
	"time"

	"budgetwatch/internal/alert"
	"budgetwatch/internal/budget"
	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
	"budgetwatch/internal/report"
	"budgetwatch/internal/storage"
	"budgetwatch/internal/trend"
)

// historyWindow is how far back the run reads snapshots for trend analysis.
const historyWindow = 30 * 24 * time.Hour

// TransactionSource fetches raw transactions from the budget provider.
type TransactionSource interface {
	TransactionsSince(ctx context.Context, since time.Time) ([]core.Transaction, error)
}

// AlertPublisher pushes danger alerts to an external notification channel.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert core.Alert) error
}

// RunProcessor executes the full pipeline for one run.
type RunProcessor struct {
	source    TransactionSource
	store     *storage.HistoryStore
	plan      *budget.Plan
	mapper    *budget.Mapper
	trends    *trend.Engine
	alerts    *alert.Engine
	publisher AlertPublisher
	logger    *log.Logger
	now       func() time.Time
}

// NewRunProcessor wires the pipeline. publisher may be nil when no broker
// is configured; the run then skips notification publishing.
func NewRunProcessor(
	source TransactionSource,
	store *storage.HistoryStore,
	plan *budget.Plan,
	alertThreshold float64,
	publisher AlertPublisher,
	logger *log.Logger,
) *RunProcessor {
	return &RunProcessor{
		source:    source,
		store:     store,
		plan:      plan,
		mapper:    budget.NewMapper(plan.Mapping),
		trends:    trend.NewEngine(),
		alerts:    alert.NewEngine(alertThreshold, store, logger),
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentRun),
		now:       time.Now,
	}
}

// WithClock overrides the run clock. Tests pin it to a fixed date.
func (p *RunProcessor) WithClock(now func() time.Time) *RunProcessor {
	p.now = now
	return p
}

// Run executes one pass and returns the assembled bundle.
//
// Fetch and snapshot persistence failures abort the run. History reads
// degrade: with no usable history the bundle carries current metrics and
// alerts but no trends. Notification publishing is best effort.
func (p *RunProcessor) Run(ctx context.Context, testMode bool) (*report.Bundle, error) {
	now := p.now()
	since := core.StartOfMonth(now)

	p.logger.InfoContext(ctx, "Starting budget run",
		log.FieldDate, core.DayKey(now),
		log.FieldTestMode, testMode)

	transactions, err := p.source.TransactionsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	p.logger.InfoContext(ctx, "Transactions fetched",
		log.FieldOperation, log.OpFetch,
		log.FieldCount, len(transactions))

	spending := budget.Aggregate(p.plan, p.mapper, transactions)
	metrics := budget.ComputeMetrics(p.plan, spending)
	totals := budget.ComputeTotals(metrics)

	if err := p.store.UpsertDailySpending(ctx, now, metrics); err != nil {
		return nil, fmt.Errorf("persist daily snapshots: %w", err)
	}

	history := p.store.SpendingSince(ctx, now.Add(-historyWindow))
	trends := p.trends.Analyze(history, now)
	p.logger.InfoContext(ctx, "Trend analysis complete",
		log.FieldOperation, log.OpAnalyze,
		log.FieldCount, len(trends))

	alerts, err := p.alerts.Evaluate(ctx, metrics, now)
	if err != nil {
		return nil, fmt.Errorf("evaluate alerts: %w", err)
	}

	p.publishDangerAlerts(ctx, alerts)

	return report.Build(metrics, trends, alerts, totals, now, testMode), nil
}

// publishDangerAlerts forwards danger alerts to the broker. Failures are
// logged and swallowed; the alerts are already in the durable log.
func (p *RunProcessor) publishDangerAlerts(ctx context.Context, alerts []core.Alert) {
	if p.publisher == nil {
		return
	}
	for _, a := range alerts {
		if a.Severity != core.SeverityDanger {
			continue
		}
		if err := p.publisher.PublishAlert(ctx, a); err != nil {
			p.logger.WarnContext(ctx, "Alert notification failed",
				log.FieldCategory, a.Category,
				log.FieldError, err)
		}
	}
}
