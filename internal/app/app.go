package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"ecomdash/internal/config"
	"ecomdash/internal/dataprocessing"
	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/infrastructure"
	customMiddleware "ecomdash/internal/middleware"
	"ecomdash/internal/services"
	handlers "ecomdash/internal/transport/http"
	ws "ecomdash/internal/websocket"
	"ecomdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	ErrorHandler     *apierrors.ErrorHandler
	Dataset          *dataprocessing.Dataset
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub
}

// NewApplication initializes telemetry and loads the dataset named by cfg.
// A dataset that cannot be loaded is an error.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("dataset", cfg.Dataset.Path))

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	dataset, err := dataprocessing.OpenDataset(ctx, cfg.Dataset.Path, dataprocessing.LoadOptions{
		Delimiter: cfg.Dataset.DelimiterRune(),
		Logger:    logger,
	})
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	return New(cfg, logger, providers, dataset)
}

// New assembles the application around an already loaded dataset.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, dataset *dataprocessing.Dataset) (*Application, error) {
	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		Dataset:       dataset,
	}

	if err := a.initializeServices(); err != nil {
		return nil, err
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices creates all services
func (a *Application) initializeServices() error {
	dashboard, err := services.NewDashboardService(
		a.Dataset,
		services.OptionsFromConfig(a.Config.Dataset, a.Metrics),
		infrastructure.WithComponent(a.Logger, "dashboard_service"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}
	a.DashboardService = dashboard

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.HealthService = services.NewHealthService(contracts.Version, a.Dataset, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Safe for WebSocket: neither wraps the ResponseWriter
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(
		customMiddleware.WebSocketTraceMiddleware(a.Logger),
		customMiddleware.Recoverer(a.ErrorHandler),
	).Handle("/ws/dashboard", ws.NewHandler(
		a.WebSocketHub,
		a.DashboardService,
		a.Config.WebSocket,
		a.Config.Server.RequestTimeout,
		a.corsConfig().AllowedOrigins,
		a.Logger,
	))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.DashboardMetricsMiddleware(a.Metrics))

		a.setupAPIRoutes(r)
	})

	// Outside the middleware group so scrapes are not rate limited
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(
			a.DashboardService,
			handlers.DashboardHandlerOptions{
				CSVBOM:         a.Config.Export.CSVBOM,
				FilenamePrefix: a.Config.Export.FilenamePrefix,
			},
			a.Logger,
			a.ErrorHandler,
		)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
}

// corsConfig builds the CORS settings from the security config
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP server. A serve failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	info := a.Dataset.Info()
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level),
		slog.Int("dataset_rows", info.Rows),
		slog.String("dataset_range", info.Range.String()))

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("dashboard", fmt.Sprintf("http://%s/api/dashboard", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Hijacked WebSocket connections are not covered by Shutdown
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or until the server fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}

// ensure the hub satisfies the health service dependency
var _ services.SessionCounter = (*ws.Hub)(nil)

// ensure the dashboard service satisfies the handler dependencies
var (
	_ handlers.DashboardServiceInterface = (*services.DashboardService)(nil)
	_ ws.DashboardProvider               = (*services.DashboardService)(nil)
)
