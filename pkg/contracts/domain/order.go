// Package domain holds the order records and dashboard views shared by the
// loader, the aggregators and every presentation surface.
package domain

import (
	"time"
)

// MissingReviewScore marks a record whose review score cell was empty or NaN.
// Such records are left out of the review preference aggregate.
const MissingReviewScore = -1

// OrderRecord is one line item of the joined order dataset. Records are never
// mutated after load; every downstream transform builds new values.
// DeliveredAt is the zero time when the dataset has no delivery date.
type OrderRecord struct {
	Index        int       `json:"index"`
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	Price        float64   `json:"price"`
	ReviewScore  int       `json:"review_score"`
	ReviewCount  int64     `json:"review_counts"`
	CustomerID   string    `json:"customer_id"`
	PurchasedAt  time.Time `json:"order_purchase_timestamp"`
	DeliveredAt  time.Time `json:"order_delivered_customer_date"`
	DeliveryTime float64   `json:"delivery_time"`
	Category     string    `json:"product_category_name"`
	Frequency    int64     `json:"frequency"`
}

// Delivered reports whether the record carries a delivery timestamp.
func (r OrderRecord) Delivered() bool {
	return !r.DeliveredAt.IsZero()
}

// PurchaseDay returns the calendar day of the purchase timestamp at midnight.
// Timestamps are naive wall-clock values, so no zone conversion takes place.
func (r OrderRecord) PurchaseDay() time.Time {
	return TruncateDay(r.PurchasedAt)
}

// TruncateDay returns midnight UTC of the wall-clock date of t. Dataset
// timestamps are naive, so the date component is taken as-is.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
