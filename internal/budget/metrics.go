package budget

import "budgetwatch/internal/core"

// ComputeMetrics derives spent/target/percentage/status for every category
// in the plan, including zero-spend ones. Total function: a zero target
// yields percentage 0 rather than dividing by zero.
func ComputeMetrics(plan *Plan, spending map[string]core.Money) map[string]core.Metric {
	metrics := make(map[string]core.Metric, len(plan.Targets))

	for category, target := range plan.Targets {
		spent := spending[category]

		var percentage float64
		if target.Cents > 0 {
			percentage = spent.Float() / target.Float() * 100
		}

		metrics[category] = core.Metric{
			Spent:      spent,
			Target:     target,
			Percentage: percentage,
			Status:     core.StatusFor(percentage),
		}
	}

	return metrics
}

// ComputeTotals summarizes a metric set across all categories.
func ComputeTotals(metrics map[string]core.Metric) core.Totals {
	var totals core.Totals
	for _, m := range metrics {
		totals.Spent = totals.Spent.Add(m.Spent)
		totals.Budget = totals.Budget.Add(m.Target)
	}
	totals.Remaining = totals.Budget.Sub(totals.Spent)
	if totals.Budget.Cents > 0 {
		totals.Percentage = totals.Spent.Float() / totals.Budget.Float() * 100
	}
	return totals
}
