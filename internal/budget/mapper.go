package budget

import "strings"

// Mapper normalizes raw provider category labels into plan categories.
// Lookup is case-insensitive exact match; unmapped labels pass through
// unchanged and are filtered later by the target set.
type Mapper struct {
	byLabel map[string]string
}

// NewMapper builds a mapper from a raw-label to category table.
func NewMapper(mapping map[string]string) *Mapper {
	byLabel := make(map[string]string, len(mapping))
	for label, category := range mapping {
		byLabel[normalizeLabel(label)] = category
	}
	return &Mapper{byLabel: byLabel}
}

// Map returns the plan category for a raw label, or the label itself when
// no mapping exists.
func (m *Mapper) Map(rawLabel string) string {
	if category, ok := m.byLabel[normalizeLabel(rawLabel)]; ok {
		return category
	}
	return rawLabel
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
