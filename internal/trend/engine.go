// Package trend derives spending velocity from historical daily snapshots:
// an ordinary-least-squares slope over recent points, a direction
// classification and a simple month-end forecast.
package trend

import (
	"time"

	"budgetwatch/internal/core"
)

const (
	// minPoints is the minimum history a category needs before any trend is
	// computed. Below it the category is omitted, not errored.
	minPoints = 7

	// window bounds the fit to the most recent points.
	window = 14

	// slopeThreshold classifies direction, in currency units per day. Not
	// normalized by target size.
	slopeThreshold = 5.0

	// monthDays is a fixed 30-day month approximation for the forecast.
	monthDays = 30
)

// Engine computes per-category trend results from snapshot history.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes a TrendResult per category with at least minPoints
// historical snapshots. Each category is handled independently; snapshots
// must be ordered ascending by date, as the store returns them. The
// reference date supplies "today" for the month-end forecast.
func (e *Engine) Analyze(history map[string][]core.DailySnapshot, ref time.Time) map[string]core.TrendResult {
	results := make(map[string]core.TrendResult)

	for category, snapshots := range history {
		if len(snapshots) < minPoints {
			continue
		}

		// Right-truncated window: most recent points, oldest first.
		recent := snapshots
		if len(recent) > window {
			recent = recent[len(recent)-window:]
		}

		amounts := make([]float64, len(recent))
		for i, s := range recent {
			amounts[i] = s.Spent.Float()
		}

		slope, ok := olsSlope(amounts)
		if !ok {
			continue
		}

		last := amounts[len(amounts)-1]
		daysLeft := monthDays - ref.Day()
		projected := last
		if additional := slope * float64(daysLeft); additional > 0 {
			// The forecast floors at the last observed amount: a falling
			// trend never projects below current spend.
			projected += additional
		}

		results[category] = core.TrendResult{
			Category:  category,
			Slope:     slope,
			Direction: classify(slope),
			Projected: core.FromFloat(projected),
			AvgDaily7: core.FromFloat(mean(amounts[len(amounts)-minPoints:])),
		}
	}

	return results
}

// olsSlope fits amount against the sequential day index 0..n-1 and returns
// the least-squares slope. ok is false when the fit is degenerate (n < 2).
func olsSlope(amounts []float64) (float64, bool) {
	n := float64(len(amounts))
	if len(amounts) < 2 {
		return 0, false
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range amounts {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}

func classify(slope float64) core.TrendDirection {
	switch {
	case slope > slopeThreshold:
		return core.TrendIncreasing
	case slope < -slopeThreshold:
		return core.TrendDecreasing
	default:
		return core.TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
