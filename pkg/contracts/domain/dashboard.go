package domain

import (
	"errors"
	"time"
)

// ErrInvertedRange reports a range whose start day falls after its end day.
var ErrInvertedRange = errors.New("start date is after end date")

// DateLayout is the calendar-date format used on every external surface.
const DateLayout = "2006-01-02"

// Single dashboard views, as named by the view endpoints and CSV exports.
const (
	ViewDaily      = "daily"
	ViewCategories = "categories"
	ViewReviews    = "reviews"
)

// Views lists every single view name.
var Views = []string{ViewDaily, ViewCategories, ViewReviews}

// DailyOrders is one row of the daily aggregate. OrderCount counts distinct
// order IDs; Revenue sums price over line items without deduplication.
type DailyOrders struct {
	Day        time.Time `json:"day"`
	OrderCount int       `json:"order_count"`
	Revenue    float64   `json:"revenue"`
}

// CategoryFrequency is the summed purchase frequency of one product category.
type CategoryFrequency struct {
	Category  string `json:"product_category_name"`
	Frequency int64  `json:"frequency"`
}

// ReviewPreference is the summed review count of one (score, category) pair.
type ReviewPreference struct {
	ReviewScore int    `json:"review_score"`
	Category    string `json:"product_category_name"`
	ReviewCount int64  `json:"review_counts"`
}

// DateRange is an inclusive calendar-day window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether ts falls on a day inside the range.
func (r DateRange) Contains(ts time.Time) bool {
	day := TruncateDay(ts)
	return !day.Before(TruncateDay(r.Start)) && !day.After(TruncateDay(r.End))
}

// Validate rejects ranges whose start day falls after the end day.
func (r DateRange) Validate() error {
	if TruncateDay(r.Start).After(TruncateDay(r.End)) {
		return ErrInvertedRange
	}
	return nil
}

// Days returns the number of calendar days covered, 0 for an inverted range.
func (r DateRange) Days() int {
	if r.Validate() != nil {
		return 0
	}
	return int(TruncateDay(r.End).Sub(TruncateDay(r.Start))/(24*time.Hour)) + 1
}

// String formats the range as "start..end" using DateLayout.
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// DashboardMetrics are the scalar widgets shown above the charts.
type DashboardMetrics struct {
	TotalOrders      int     `json:"total_orders"`
	TotalRevenue     float64 `json:"total_revenue"`
	FormattedRevenue string  `json:"formatted_revenue"`
	Currency         string  `json:"currency"`
	Locale           string  `json:"locale"`
}

// Dashboard bundles every view handed to the presentation layer for one range.
type Dashboard struct {
	Range           DateRange           `json:"range"`
	Rows            int                 `json:"rows"`
	Empty           bool                `json:"empty"`
	Metrics         DashboardMetrics    `json:"metrics"`
	DailyOrders     []DailyOrders       `json:"daily_orders"`
	BestCategories  []CategoryFrequency `json:"best_categories"`
	WorstCategories []CategoryFrequency `json:"worst_categories"`
	BestRecommended []ReviewPreference  `json:"best_recommended"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Range    DateRange `json:"range"`
	LoadedAt time.Time `json:"loaded_at"`
}
