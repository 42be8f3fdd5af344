package dataprocessing

import (
	"time"

	"ecomdash/pkg/contracts/domain"
)

// Filter returns the rows purchased between the calendar days of start and
// end, both inclusive. Comparison is at day granularity: every timestamp on
// the end day is kept. When start is after end the result is empty. The input
// table is not modified and row order is preserved.
func Filter(t *Table, start, end time.Time) *Table {
	lo := domain.TruncateDay(start)
	last := domain.TruncateDay(end)
	if lo.After(last) {
		return NewTable(nil)
	}
	hi := last.AddDate(0, 0, 1)

	out := make([]domain.OrderRecord, 0)
	for _, r := range t.rows() {
		if r.PurchasedAt.Before(lo) || !r.PurchasedAt.Before(hi) {
			continue
		}
		out = append(out, r)
	}
	return NewTable(out)
}

// FilterRange is Filter over a DateRange.
func FilterRange(t *Table, r domain.DateRange) *Table {
	return Filter(t, r.Start, r.End)
}

// NewDateRange builds a day-truncated range.
func NewDateRange(start, end time.Time) domain.DateRange {
	return domain.DateRange{
		Start: domain.TruncateDay(start),
		End:   domain.TruncateDay(end),
	}
}

// FullRange returns [min date, max date] of the table, the default range of
// the date picker. An empty table yields the zero range.
func FullRange(t *Table) domain.DateRange {
	if t.Empty() {
		return domain.DateRange{}
	}
	return NewDateRange(t.MinTime(), t.MaxTime())
}
