package exporter

import (
	"fmt"
	"strconv"
	"time"

	"ecomdash/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDay formats a calendar day as YYYY-MM-DD
func formatDay(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// Filename builds "<prefix>_<view>_<start>_<end>.<ext>".
func Filename(prefix, view string, r domain.DateRange, ext string) string {
	if prefix == "" {
		prefix = "dashboard"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", prefix, view, formatDay(r.Start), formatDay(r.End), ext)
}
