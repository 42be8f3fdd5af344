package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// OrdersHeader is the header line of the joined order dataset.
const OrdersHeader = "order_id,product_id,price,review_score,review_counts,customer_id_y," +
	"order_purchase_timestamp_y,order_delivered_customer_date_y,delivery_time_y," +
	"product_category_name_y,frequency_y"

// OrderRow is the subset of dataset columns tests usually care about.
type OrderRow struct {
	OrderID     string
	Price       float64
	ReviewScore int
	ReviewCount int
	PurchasedAt string
	Category    string
	Frequency   int
}

// OrdersCSV renders rows as dataset CSV.
func OrdersCSV(rows ...OrderRow) string {
	var b strings.Builder
	b.WriteString(OrdersHeader)
	b.WriteByte('\n')
	for i, r := range rows {
		fmt.Fprintf(&b, "%s,p%d,%g,%d,%d,c%d,%s,,,%s,%d\n",
			r.OrderID, i, r.Price, r.ReviewScore, r.ReviewCount, i,
			r.PurchasedAt, r.Category, r.Frequency)
	}
	return b.String()
}

// WriteOrders writes rows to a dataset file in a temp dir and returns its path.
func WriteOrders(t *testing.T, rows ...OrderRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(OrdersCSV(rows...)), 0644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

// SampleOrders spans 2018-01-01..2018-01-05 with a gap on 01-02 and 01-03.
func SampleOrders() []OrderRow {
	return []OrderRow{
		{OrderID: "o1", Price: 10, ReviewScore: 5, ReviewCount: 3, PurchasedAt: "2018-01-01 10:00:00", Category: "beleza_saude", Frequency: 4},
		{OrderID: "o1", Price: 5, ReviewScore: 5, ReviewCount: 1, PurchasedAt: "2018-01-01 10:00:00", Category: "perfumaria", Frequency: 2},
		{OrderID: "o2", Price: 20, ReviewScore: 4, ReviewCount: 2, PurchasedAt: "2018-01-01 18:30:00", Category: "beleza_saude", Frequency: 1},
		{OrderID: "o3", Price: 100, ReviewScore: 1, ReviewCount: 7, PurchasedAt: "2018-01-04 09:00:00", Category: "moveis_decoracao", Frequency: 6},
		{OrderID: "o4", Price: 7.5, ReviewScore: 3, ReviewCount: 2, PurchasedAt: "2018-01-05 23:59:00", Category: "esporte_lazer", Frequency: 3},
	}
}
