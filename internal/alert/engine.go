// Package alert classifies category metrics against the spending threshold
// and appends the resulting events to the alert log.
package alert

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budgetwatch/internal/core"
	"budgetwatch/internal/log"
)

// Recorder appends alerts to the durable alert log.
type Recorder interface {
	RecordAlert(ctx context.Context, alert core.Alert) error
}

// Engine evaluates metrics into at most one alert per category per run.
type Engine struct {
	threshold float64
	store     Recorder
	logger    *log.Logger
}

// NewEngine creates an engine with the given warning threshold (percent of
// target, typically 90). The recorder may not be nil.
func NewEngine(threshold float64, store Recorder, logger *log.Logger) *Engine {
	return &Engine{
		threshold: threshold,
		store:     store,
		logger:    logger.WithComponent(log.ComponentAlert),
	}
}

// Evaluate classifies each category and persists every emitted alert.
// Per category: threshold <= p < 100 is a high-spending warning, p >= 100
// is an over-budget danger, below threshold is silent. Repeat alerts across
// runs are intentional; there is no dedup. Emission order is sorted by
// category so a given input always yields the same sequence.
func (e *Engine) Evaluate(ctx context.Context, metrics map[string]core.Metric, date time.Time) ([]core.Alert, error) {
	categories := make([]string, 0, len(metrics))
	for category := range metrics {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var alerts []core.Alert
	for _, category := range categories {
		p := metrics[category].Percentage

		var a core.Alert
		switch {
		case p >= 100:
			a = core.Alert{
				Date:     core.Day(date),
				Category: category,
				Kind:     core.AlertOverBudget,
				Severity: core.SeverityDanger,
				Message:  fmt.Sprintf("%s is OVER BUDGET at %.0f%%", category, p),
			}
		case p >= e.threshold:
			a = core.Alert{
				Date:     core.Day(date),
				Category: category,
				Kind:     core.AlertHighSpending,
				Severity: core.SeverityWarning,
				Message:  fmt.Sprintf("%s is at %.0f%% of monthly budget", category, p),
			}
		default:
			continue
		}

		if err := e.store.RecordAlert(ctx, a); err != nil {
			return nil, fmt.Errorf("record alert for %s: %w", category, err)
		}

		e.logger.InfoContext(ctx, "Spending alert raised",
			log.FieldCategory, category,
			log.FieldAlertKind, string(a.Kind),
			log.FieldSeverity, string(a.Severity),
			log.FieldPercentage, p)

		alerts = append(alerts, a)
	}

	return alerts, nil
}
