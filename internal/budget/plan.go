// Package budget maps raw provider transactions into budget categories and
// computes spent-vs-target metrics against a fixed monthly plan.
package budget

import (
	"encoding/json"
	"fmt"
	"os"

	"budgetwatch/internal/core"
)

// Plan is the immutable budget configuration for a run: the raw-label to
// category mapping and the monthly target per category. Variable spending
// categories only; fixed costs and funds are deliberately absent.
type Plan struct {
	Mapping map[string]string
	Targets map[string]core.Money
}

// planFile is the on-disk JSON shape. Targets are major units, matching how
// people write budgets ("Groceries": 900).
type planFile struct {
	Mapping map[string]string  `json:"mapping"`
	Targets map[string]float64 `json:"monthly_targets"`
}

// DefaultPlan returns the built-in category mapping and targets.
func DefaultPlan() *Plan {
	return &Plan{
		Mapping: map[string]string{
			"🥕  Groceries":                "🥕 Groceries",
			"🛋️  Shopping":                 "🛒 Shopping & Personal",
			"🧘‍♀️  Personal Care":            "🛒 Shopping & Personal",
			"🍼  Baby Supplies":            "🛒 Shopping & Personal",
			"🥯  Dining Out":               "🍽️ Dining Out",
			"⛽️  Gas":                      "🚗 Transportation",
			"👩‍⚕️  Medical & Pediatric":      "🏥 Services & Medical",
			"🦮  Pet Stuff":                "🐕 Pet Care",
			"🔁   Subscriptions":           "🎮 Entertainment & Tech",
			"🍿  Entertainment":            "🎮 Entertainment & Tech",
			"🔨  Home Maintenance / HOA":   "🔧 Home Maintenance",
		},
		Targets: map[string]core.Money{
			"🥕 Groceries":            {Cents: 90000},
			"🛒 Shopping & Personal":  {Cents: 67500},
			"🍽️ Dining Out":           {Cents: 25000},
			"🚗 Transportation":       {Cents: 15000},
			"🏥 Services & Medical":   {Cents: 40000},
			"🐕 Pet Care":             {Cents: 30000},
			"🎮 Entertainment & Tech": {Cents: 12500},
			"🔧 Home Maintenance":     {Cents: 10100},
		},
	}
}

// LoadPlan reads a plan from a JSON file. An empty path returns the default
// plan. Targets must be positive.
func LoadPlan(path string) (*Plan, error) {
	if path == "" {
		return DefaultPlan(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	var pf planFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}

	plan := &Plan{
		Mapping: pf.Mapping,
		Targets: make(map[string]core.Money, len(pf.Targets)),
	}
	if plan.Mapping == nil {
		plan.Mapping = map[string]string{}
	}
	for category, target := range pf.Targets {
		if target <= 0 {
			return nil, fmt.Errorf("category %q: %w", category, core.ErrInvalidTarget)
		}
		plan.Targets[category] = core.FromFloat(target)
	}
	if len(plan.Targets) == 0 {
		return nil, fmt.Errorf("plan file %s has no monthly targets", path)
	}

	return plan, nil
}

// HasTarget reports whether the category is part of the configured plan.
func (p *Plan) HasTarget(category string) bool {
	_, ok := p.Targets[category]
	return ok
}

// TotalBudget sums all monthly targets.
func (p *Plan) TotalBudget() core.Money {
	var total core.Money
	for _, t := range p.Targets {
		total = total.Add(t)
	}
	return total
}
