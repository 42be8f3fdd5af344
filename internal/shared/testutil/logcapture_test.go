package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	logger, h := NewTestLogger(t)

	logger.With(slog.String("component", "test")).Info("first", slog.Int("n", 1))
	logger.Error("second")

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "test", records[0].Attrs["component"])
	assert.Equal(t, int64(1), records[0].Attrs["n"])

	rec, ok := h.Find("sec")
	require.True(t, ok)
	assert.Equal(t, slog.LevelError, rec.Level)

	AssertLogged(t, h, slog.LevelInfo, "first")
}

func TestOrdersCSV(t *testing.T) {
	csv := OrdersCSV(OrderRow{OrderID: "a", Price: 1.5, ReviewScore: 5, ReviewCount: 2, PurchasedAt: "2018-01-01 00:00:00", Category: "x", Frequency: 3})

	assert.Equal(t, OrdersHeader+"\na,p0,1.5,5,2,c0,2018-01-01 00:00:00,,,x,3\n", csv)
}
