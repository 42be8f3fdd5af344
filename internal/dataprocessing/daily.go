package dataprocessing

import (
	"sort"
	"time"

	"ecomdash/pkg/contracts/domain"
)

// AggregateDaily buckets rows by purchase day. Each bucket holds the number
// of distinct order IDs and the summed price of its line items. Output is
// ascending by day; an empty table yields an empty, non-nil slice.
func AggregateDaily(t *Table) []domain.DailyOrders {
	type bucket struct {
		orders  map[string]struct{}
		revenue float64
	}

	buckets := make(map[time.Time]*bucket)
	for _, r := range t.rows() {
		day := r.PurchaseDay()
		b, ok := buckets[day]
		if !ok {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[day] = b
		}
		b.orders[r.OrderID] = struct{}{}
		b.revenue += r.Price
	}

	out := make([]domain.DailyOrders, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, domain.DailyOrders{
			Day:        day,
			OrderCount: len(b.orders),
			Revenue:    b.revenue,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// FillDailyGaps returns rows with a zero entry for every missing day between
// the first and last row. rows must be ascending by day.
func FillDailyGaps(rows []domain.DailyOrders) []domain.DailyOrders {
	if len(rows) == 0 {
		return []domain.DailyOrders{}
	}

	first := domain.TruncateDay(rows[0].Day)
	last := domain.TruncateDay(rows[len(rows)-1].Day)
	days := int(last.Sub(first)/(24*time.Hour)) + 1

	out := make([]domain.DailyOrders, 0, days)
	i := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if i < len(rows) && domain.TruncateDay(rows[i].Day).Equal(day) {
			out = append(out, rows[i])
			i++
			continue
		}
		out = append(out, domain.DailyOrders{Day: day})
	}
	return out
}

// SumDaily returns the totals across daily rows.
func SumDaily(rows []domain.DailyOrders) (orders int, revenue float64) {
	for _, r := range rows {
		orders += r.OrderCount
		revenue += r.Revenue
	}
	return orders, revenue
}
