package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/dataprocessing"
	"ecomdash/internal/shared/testutil"
)

type fakeSessions int

func (f fakeSessions) ActiveSessions() int { return int(f) }

func TestHealthService_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		dataset    *dataprocessing.Dataset
		wantStatus string
		wantMsg    string
	}{
		{"loaded dataset", sampleDataset(t), StatusReady, "5 rows covering 2018-01-01..2018-01-05"},
		{"no dataset", nil, StatusNotReady, "dataset not loaded"},
		{"empty dataset", dataprocessing.NewDataset(nil, "empty.csv"), StatusReady, "dataset is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", tt.dataset, fakeSessions(2), logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			require.Contains(t, status.Services, "dataset")
			assert.Equal(t, tt.wantMsg, status.Services["dataset"].Message)
			assert.Equal(t, "2 active sessions", status.Services["websocket"].Message)

			if tt.wantStatus == StatusNotReady {
				testutil.AssertLogged(t, logs, slog.LevelWarn, "readiness check failed")
			}
		})
	}
}

func TestHealthService_Liveness(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, nil)

	assert.Equal(t, StatusOK, hs.HealthCheck(context.Background()).Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Contains(t, v, "go_version")
}
