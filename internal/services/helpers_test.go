package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/infrastructure"
	"ecomdash/internal/shared/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// sampleDataset loads testutil.SampleOrders: 5 rows, 4 orders, 2018-01-01..2018-01-05.
func sampleDataset(t *testing.T) *dataprocessing.Dataset {
	t.Helper()
	path := testutil.WriteOrders(t, testutil.SampleOrders()...)
	ds, err := dataprocessing.OpenDataset(context.Background(), path, dataprocessing.LoadOptions{
		Delimiter: ',',
		Logger:    discardLogger(),
	})
	require.NoError(t, err)
	return ds
}

// newTestService formats revenue as USD/en-US and ranks the top 2 rows.
func newTestService(t *testing.T, ds *dataprocessing.Dataset) *DashboardService {
	t.Helper()
	metrics, err := infrastructure.CreateDashboardMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	svc, err := NewDashboardService(ds, DashboardOptions{
		Currency: "USD",
		Locale:   "en-US",
		TopN:     2,
		Metrics:  metrics,
	}, discardLogger())
	require.NoError(t, err)
	return svc
}
