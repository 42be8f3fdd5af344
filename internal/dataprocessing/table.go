package dataprocessing

import (
	"time"

	"ecomdash/pkg/contracts/domain"
)

// Table is an ordered, read-only collection of order records. Operations on a
// Table never modify it; filtering and aggregation allocate new values.
type Table struct {
	records []domain.OrderRecord
}

// NewTable wraps records. The slice is owned by the table afterwards.
func NewTable(records []domain.OrderRecord) *Table {
	if records == nil {
		records = []domain.OrderRecord{}
	}
	return &Table{records: records}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// At returns the i-th row.
func (t *Table) At(i int) domain.OrderRecord {
	return t.records[i]
}

// Records returns a copy of the rows.
func (t *Table) Records() []domain.OrderRecord {
	if t == nil {
		return []domain.OrderRecord{}
	}
	out := make([]domain.OrderRecord, len(t.records))
	copy(out, t.records)
	return out
}

// MinTime returns the earliest purchase timestamp, or the zero time when empty.
func (t *Table) MinTime() time.Time {
	var min time.Time
	for i, r := range t.rows() {
		if i == 0 || r.PurchasedAt.Before(min) {
			min = r.PurchasedAt
		}
	}
	return min
}

// MaxTime returns the latest purchase timestamp, or the zero time when empty.
func (t *Table) MaxTime() time.Time {
	var max time.Time
	for i, r := range t.rows() {
		if i == 0 || r.PurchasedAt.After(max) {
			max = r.PurchasedAt
		}
	}
	return max
}

// DistinctOrders counts unique order IDs.
func (t *Table) DistinctOrders() int {
	seen := make(map[string]struct{}, t.Len())
	for _, r := range t.rows() {
		seen[r.OrderID] = struct{}{}
	}
	return len(seen)
}

// TotalRevenue sums price over every row.
func (t *Table) TotalRevenue() float64 {
	var total float64
	for _, r := range t.rows() {
		total += r.Price
	}
	return total
}

func (t *Table) rows() []domain.OrderRecord {
	if t == nil {
		return nil
	}
	return t.records
}
