package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusOnTrack      Status = "on_track"
	StatusCloseToLimit Status = "close_to_limit"
	StatusOverBudget   Status = "over_budget"

	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"

	AlertHighSpending AlertKind = "high_spending"
	AlertOverBudget   AlertKind = "over_budget"

	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

type (
	Status         string
	TrendDirection string
	AlertKind      string
	Severity       string

	// Transaction is a single raw transaction from the provider. Amount is
	// signed provider milliunits; negative amounts are outflows.
	Transaction struct {
		AmountMilli  int64
		CategoryName string
	}

	// Metric is the spent-vs-target position of one category.
	Metric struct {
		Spent      Money
		Target     Money
		Percentage float64
		Status     Status
	}

	// DailySnapshot is one day's metric for one category as persisted in the
	// history ledger. (Date, Category) is unique.
	DailySnapshot struct {
		Date       time.Time
		Category   string
		Spent      Money
		Target     Money
		Percentage float64
	}

	// TrendResult is the derived spending velocity for one category.
	// Slope is in currency units per day.
	TrendResult struct {
		Category  string
		Slope     float64
		Direction TrendDirection
		Projected Money
		AvgDaily7 Money
	}

	// Alert is an append-only threshold event. Repeats across runs are
	// permitted while the condition persists.
	Alert struct {
		Date     time.Time
		Category string
		Kind     AlertKind
		Severity Severity
		Message  string
	}

	// Totals summarizes a whole run across categories.
	Totals struct {
		Spent      Money
		Budget     Money
		Remaining  Money
		Percentage float64
	}
)

var (
	ErrInvalidTarget = errors.New("invalid monthly target")
	ErrEmptyCategory = errors.New("empty category")
)

// StatusFor classifies a percentage-of-target value.
func StatusFor(percentage float64) Status {
	switch {
	case percentage > 100:
		return StatusOverBudget
	case percentage > 90:
		return StatusCloseToLimit
	default:
		return StatusOnTrack
	}
}

func (a Alert) Validate() error {
	if strings.TrimSpace(a.Category) == "" {
		return ErrEmptyCategory
	}
	if a.Kind != AlertHighSpending && a.Kind != AlertOverBudget {
		return errors.New("invalid alert kind")
	}
	if a.Severity != SeverityWarning && a.Severity != SeverityDanger {
		return errors.New("invalid alert severity")
	}
	if a.Date.IsZero() {
		return errors.New("alert date cannot be zero")
	}
	return nil
}

// Day truncates t to its calendar day in UTC. Snapshot and alert keys use
// day precision only.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day as the YYYY-MM-DD key used by the store and exports.
func DayKey(t time.Time) string {
	return Day(t).Format("2006-01-02")
}
