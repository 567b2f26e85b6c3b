package budget

import "budgetwatch/internal/core"

// Aggregate sums outflows per mapped category for the current period.
// Positive amounts (inflows) are skipped, as are categories without a
// configured target. Amounts convert from provider milliunits to cents
// here, once. Pure summation: the result does not depend on input order.
func Aggregate(plan *Plan, mapper *Mapper, transactions []core.Transaction) map[string]core.Money {
	spending := make(map[string]core.Money)

	for _, tx := range transactions {
		if tx.AmountMilli >= 0 {
			continue
		}
		category := mapper.Map(tx.CategoryName)
		if !plan.HasTarget(category) {
			continue
		}
		spending[category] = spending[category].Add(core.FromMilliunits(-tx.AmountMilli))
	}

	return spending
}
