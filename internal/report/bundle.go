// Package report turns a run's computed values into deliverables: the JSON
// export bundle, the HTML email body, the trend chart and the retention
// policy over saved artifacts.
package report

import (
	"time"

	"budgetwatch/internal/core"
)

// Bundle is the exported value bundle for one run: what the email, the JSON
// export and the read-only API all serve. Amounts are major units here;
// cents stay internal.
type Bundle struct {
	Timestamp time.Time         `json:"timestamp"`
	Date      string            `json:"date"`
	Metrics   map[string]Metric `json:"metrics"`
	Trends    map[string]Trend  `json:"trends"`
	Alerts    []Alert           `json:"alerts"`
	TestMode  bool              `json:"test_mode"`
	Totals    Totals            `json:"totals"`
}

type Metric struct {
	Spent      float64 `json:"spent"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
}

type Trend struct {
	Slope          float64 `json:"slope"`
	Direction      string  `json:"direction"`
	ProjectedTotal float64 `json:"projected_total"`
	AvgDaily       float64 `json:"avg_daily"`
}

type Alert struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Type     string `json:"alert_type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type Totals struct {
	Spent      float64 `json:"spent"`
	Budget     float64 `json:"budget"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Build assembles the bundle from the pipeline's outputs.
func Build(
	metrics map[string]core.Metric,
	trends map[string]core.TrendResult,
	alerts []core.Alert,
	totals core.Totals,
	now time.Time,
	testMode bool,
) *Bundle {
	b := &Bundle{
		Timestamp: now,
		Date:      core.DayKey(now),
		Metrics:   make(map[string]Metric, len(metrics)),
		Trends:    make(map[string]Trend, len(trends)),
		Alerts:    make([]Alert, 0, len(alerts)),
		TestMode:  testMode,
		Totals: Totals{
			Spent:      totals.Spent.Float(),
			Budget:     totals.Budget.Float(),
			Remaining:  totals.Remaining.Float(),
			Percentage: totals.Percentage,
		},
	}

	for category, m := range metrics {
		b.Metrics[category] = Metric{
			Spent:      m.Spent.Float(),
			Target:     m.Target.Float(),
			Percentage: m.Percentage,
			Status:     string(m.Status),
		}
	}

	for category, t := range trends {
		b.Trends[category] = Trend{
			Slope:          t.Slope,
			Direction:      string(t.Direction),
			ProjectedTotal: t.Projected.Float(),
			AvgDaily:       t.AvgDaily7.Float(),
		}
	}

	for _, a := range alerts {
		b.Alerts = append(b.Alerts, Alert{
			Date:     core.DayKey(a.Date),
			Category: a.Category,
			Type:     string(a.Kind),
			Message:  a.Message,
			Severity: string(a.Severity),
		})
	}

	return b
}
