package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/config"
	"ecomdash/internal/services"
	"ecomdash/pkg/contracts/domain"
)

// MockDashboardProvider is a testify mock of DashboardProvider
type MockDashboardProvider struct {
	mock.Mock
}

func (m *MockDashboardProvider) Dashboard(ctx context.Context, q services.DashboardQuery) (*domain.Dashboard, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockDashboardProvider) Range(ctx context.Context) (domain.DatasetInfo, error) {
	args := m.Called()
	return args.Get(0).(domain.DatasetInfo), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig() config.WebSocketConfig {
	return config.Default().WebSocket
}

func sampleInfo() domain.DatasetInfo {
	return domain.DatasetInfo{
		Source: "orders.csv",
		Rows:   4,
		Range: domain.DateRange{
			Start: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2018, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}
}

func sampleDashboard() *domain.Dashboard {
	info := sampleInfo()
	return &domain.Dashboard{
		Range:   info.Range,
		Rows:    4,
		Metrics: domain.DashboardMetrics{TotalOrders: 4, TotalRevenue: 142.5},
	}
}

// decodeMessage unmarshals one server frame
func decodeMessage(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// nextQueued pops the next queued outbound frame of c
func nextQueued(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.send:
		return decodeMessage(t, data)
	case <-time.After(time.Second):
		t.Fatal("no message queued")
		return nil
	}
}
