package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/config"
	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/infrastructure"
	customMiddleware "ecomdash/internal/middleware"
	"ecomdash/internal/shared/testutil"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

// newTestApplication builds an application over the sample orders
func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger := createTestLogger()

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry, "test"), logger)
	require.NoError(t, err)

	path := testutil.WriteOrders(t, testutil.SampleOrders()...)
	dataset, err := dataprocessing.OpenDataset(context.Background(), path, dataprocessing.DefaultLoadOptions())
	require.NoError(t, err)

	app, err := New(cfg, logger, providers, dataset)
	require.NoError(t, err)
	t.Cleanup(func() {
		app.WebSocketHub.Stop()
		_ = providers.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewApplication(t *testing.T) {
	t.Run("loads the dataset", func(t *testing.T) {
		cfg := testConfig()
		cfg.Dataset.Path = testutil.WriteOrders(t, testutil.SampleOrders()...)

		app, err := NewApplication(context.Background(), cfg, createTestLogger())
		require.NoError(t, err)
		defer app.OTelProviders.Shutdown(context.Background())

		assert.Equal(t, 5, app.Dataset.Info().Rows)
		assert.NotNil(t, app.DashboardService)
		assert.NotNil(t, app.HealthService)
		assert.NotNil(t, app.WebSocketHub)
		assert.NotNil(t, app.Router)
		assert.NotNil(t, app.Server)
	})

	t.Run("missing dataset aborts startup", func(t *testing.T) {
		cfg := testConfig()
		cfg.Dataset.Path = filepath.Join(t.TempDir(), "missing.csv")

		app, err := NewApplication(context.Background(), cfg, createTestLogger())
		assert.Nil(t, app)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dataprocessing.ErrFileNotFound))
	})
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, testConfig())

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedBody   []string
	}{
		{"health", "/api/health", http.StatusOK, []string{`"status":"ok"`}},
		{"ready", "/api/health/ready", http.StatusOK, []string{`"status":"ready"`, `"rows":5`}},
		{"live", "/api/health/live", http.StatusOK, []string{`"status":"alive"`}},
		{"version", "/api/version", http.StatusOK, []string{`"api_version":"v1"`}},
		{"dashboard", "/api/dashboard", http.StatusOK, []string{`"total_orders":4`, `"total_revenue":142.5`}},
		{"range", "/api/dashboard/range", http.StatusOK, []string{`"start":"2018-01-01"`, `"end":"2018-01-05"`}},
		{"empty range", "/api/dashboard?start=2019-01-01&end=2019-01-31", http.StatusOK, []string{`"empty":true`, `"daily_orders":[]`}},
		{"inverted range", "/api/dashboard?start=2018-01-05&end=2018-01-01", http.StatusBadRequest, []string{`"error_code":"INVALID_RANGE"`, `"trace_id"`}},
		{"bad date", "/api/dashboard/daily?end=yesterday", http.StatusBadRequest, []string{`"error_code":"VALIDATION_FAILED"`}},
		{"csv export", "/api/dashboard/export.csv?view=reviews", http.StatusOK, []string{"review_score,product_category_name,review_counts"}},
		{"unknown route", "/api/unknown", http.StatusNotFound, []string{`"status":404`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app.Router, tt.target)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			assert.NotEmpty(t, rec.Header().Get(customMiddleware.RequestIDHeader))
		})
	}
}

func TestApplication_MethodNotAllowed(t *testing.T) {
	app := newTestApplication(t, testConfig())

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard/range", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method POST is not allowed")
}

func TestApplication_SecurityMiddleware(t *testing.T) {
	app := newTestApplication(t, testConfig())

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
		req.Header.Set("Origin", "http://localhost:8080")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("security headers", func(t *testing.T) {
		rec := get(t, app.Router, "/api/health")
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.RPS = 0.001
	cfg.Security.RateLimit.Burst = 1
	app := newTestApplication(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, app.Router, "/api/health").Code)

	rec := get(t, app.Router, "/api/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestApplication_Metrics(t *testing.T) {
	app := newTestApplication(t, testConfig())
	require.NotNil(t, app.OTelProviders.PrometheusHTTP)

	require.Equal(t, http.StatusOK, get(t, app.Router, "/api/dashboard").Code)

	rec := get(t, app.Router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_builds")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApplication_WebSocketSession(t *testing.T) {
	app := newTestApplication(t, testConfig())
	app.WebSocketHub.Start()

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]interface{} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, "connection", read()["type"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "range", "id": "q1", "start": "2018-01-04", "end": "2018-01-05",
	}))
	msg := read()
	require.Equal(t, "dashboard", msg["type"])

	raw, err := json.Marshal(msg["data"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_orders":2`)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "range", "start": "2018-01-05", "end": "2018-01-04"}))
	msg = read()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "INVALID_RANGE", msg["error"].(map[string]interface{})["code"])

	rec := get(t, app.Router, "/api/health/ready")
	assert.Contains(t, rec.Body.String(), "1 active sessions")
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, app.Stop(stopCtx))
	assert.NoError(t, ctx.Err(), "a clean shutdown does not cancel the run context")
}
