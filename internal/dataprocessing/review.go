package dataprocessing

import (
	"sort"

	"ecomdash/pkg/contracts/domain"
)

type reviewKey struct {
	score    int
	category string
}

// AggregateReviewPreference sums review counts per (review score, category)
// pair, descending, with first-encountered order breaking ties. Rows without
// a category or with domain.MissingReviewScore are skipped; a score of 0 is
// kept.
func AggregateReviewPreference(t *Table) []domain.ReviewPreference {
	positions := make(map[reviewKey]int)
	out := make([]domain.ReviewPreference, 0)

	for _, r := range t.rows() {
		if r.Category == "" || r.ReviewScore == domain.MissingReviewScore {
			continue
		}
		key := reviewKey{score: r.ReviewScore, category: r.Category}
		pos, ok := positions[key]
		if !ok {
			pos = len(out)
			positions[key] = pos
			out = append(out, domain.ReviewPreference{ReviewScore: r.ReviewScore, Category: r.Category})
		}
		out[pos].ReviewCount += r.ReviewCount
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewCount > out[j].ReviewCount
	})
	return out
}

// TopReviewPreferences returns the first n rows of a descending aggregate.
func TopReviewPreferences(rows []domain.ReviewPreference, n int) []domain.ReviewPreference {
	if n <= 0 {
		return []domain.ReviewPreference{}
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]domain.ReviewPreference, n)
	copy(out, rows[:n])
	return out
}
