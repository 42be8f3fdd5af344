package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"ecomdash/internal/config"
	"ecomdash/internal/infrastructure"
)

// Handler upgrades requests on /ws/dashboard to range sessions
type Handler struct {
	hub            *Hub
	service        DashboardProvider
	upgrader       websocket.Upgrader
	cfg            config.WebSocketConfig
	timeout        time.Duration
	allowedOrigins []string
	logger         *slog.Logger
}

// NewHandler creates the session endpoint. An empty allowedOrigins list only
// admits same-host and origin-less clients.
func NewHandler(hub *Hub, service DashboardProvider, cfg config.WebSocketConfig, timeout time.Duration, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:            hub,
		service:        service,
		cfg:            cfg,
		timeout:        timeout,
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP handles GET /ws/dashboard
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	// Upgrade writes the HTTP error response itself
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.service, h.cfg, h.timeout, reqID, h.logger)
	h.hub.Register(client)
	client.Greet()

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed || allowed == "*" {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.allowedOrigins))
	return false
}
