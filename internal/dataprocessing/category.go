package dataprocessing

import (
	"sort"

	"ecomdash/pkg/contracts/domain"
)

// AggregateCategoryFrequency sums purchase frequency per product category.
// Output is descending by frequency; ties keep the order in which categories
// first appear in the table. Rows without a category are skipped.
func AggregateCategoryFrequency(t *Table) []domain.CategoryFrequency {
	positions := make(map[string]int)
	out := make([]domain.CategoryFrequency, 0)

	for _, r := range t.rows() {
		if r.Category == "" {
			continue
		}
		pos, ok := positions[r.Category]
		if !ok {
			pos = len(out)
			positions[r.Category] = pos
			out = append(out, domain.CategoryFrequency{Category: r.Category})
		}
		out[pos].Frequency += r.Frequency
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}

// TopCategories returns the first n rows of a descending aggregate.
func TopCategories(rows []domain.CategoryFrequency, n int) []domain.CategoryFrequency {
	if n <= 0 {
		return []domain.CategoryFrequency{}
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]domain.CategoryFrequency, n)
	copy(out, rows[:n])
	return out
}

// BottomCategories returns the n least frequent categories, ascending.
func BottomCategories(rows []domain.CategoryFrequency, n int) []domain.CategoryFrequency {
	if n <= 0 {
		return []domain.CategoryFrequency{}
	}
	sorted := make([]domain.CategoryFrequency, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Frequency < sorted[j].Frequency
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n:n]
}
