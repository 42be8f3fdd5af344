package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ecomdash/internal/infrastructure"
)

// Hub tracks the open dashboard sessions
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics

	totalSessions int64

	quit    chan struct{}
	running bool
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start runs the hub loop in a new goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalSessions++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.traceContext()
			h.recordSessions(ctx, 1)
			h.logger.InfoContext(ctx, "Session registered",
				slog.String("session_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("active_sessions", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; !ok {
				h.mu.Unlock()
				continue
			}
			delete(h.clients, client)
			close(client.send)
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.traceContext()
			h.recordSessions(ctx, -1)
			h.logger.InfoContext(ctx, "Session unregistered",
				slog.String("session_id", client.id),
				slog.Int("active_sessions", count),
				slog.Duration("session_duration", time.Since(client.connectedAt)))
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client and closes its send queue. It is a no-op for
// unknown clients and after Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ActiveSessions returns the number of open sessions
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalSessions returns the number of sessions registered since start
func (h *Hub) TotalSessions() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalSessions
}

// Stop ends the hub loop and closes every session connection
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)

	for client := range h.clients {
		client.close()
		delete(h.clients, client)
		h.recordSessions(context.Background(), -1)
	}
}

func (h *Hub) recordSessions(ctx context.Context, delta int64) {
	if h.metrics == nil {
		return
	}
	h.metrics.WebSocketSessions.Add(ctx, delta)
}
