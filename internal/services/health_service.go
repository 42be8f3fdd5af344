package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"ecomdash/internal/dataprocessing"
	"ecomdash/pkg/contracts"
	"ecomdash/pkg/contracts/domain"
)

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// SessionCounter reports open WebSocket sessions.
type SessionCounter interface {
	ActiveSessions() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   *dataprocessing.Dataset
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Dataset *domain.DatasetInfo `json:"dataset,omitempty"`
	Uptime  string              `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. dataset and sessions may be nil.
func NewHealthService(version string, dataset *dataprocessing.Dataset, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		dataset:   dataset,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only when a dataset is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			break
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      hs.version,
		"api_version":  info.APIVersion,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: "dataset not loaded",
		}
	}

	info := hs.dataset.Info()
	msg := fmt.Sprintf("%d rows covering %s", info.Rows, info.Range)
	if info.Rows == 0 {
		msg = "dataset is empty"
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: msg,
		Dataset: &info,
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	sh := ServiceHealth{
		Status: StatusReady,
		Uptime: time.Since(hs.startTime).String(),
	}
	if hs.sessions != nil {
		sh.Message = fmt.Sprintf("%d active sessions", hs.sessions.ActiveSessions())
	}
	return sh
}
