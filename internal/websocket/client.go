package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ecomdash/internal/config"
	"ecomdash/internal/infrastructure"
	mw "ecomdash/internal/middleware"
	"ecomdash/internal/services"
	"ecomdash/pkg/contracts/domain"
)

// Time allowed to write a message to the peer
const writeWait = 10 * time.Second

// sendBuffer is the outbound queue length of a session
const sendBuffer = 16

// DashboardProvider computes the dashboards served to sessions
type DashboardProvider interface {
	Dashboard(ctx context.Context, q services.DashboardQuery) (*domain.Dashboard, error)
	Range(ctx context.Context) (domain.DatasetInfo, error)
}

// Client is one dashboard session. Requests are answered in arrival order.
type Client struct {
	hub       *Hub
	conn      Connection
	service   DashboardProvider
	validator *mw.Validator
	cfg       config.WebSocketConfig
	timeout   time.Duration

	send chan []byte

	// ctx is cancelled when the read loop ends
	ctx    context.Context
	cancel context.CancelFunc

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	requests int64
}

// NewClient creates a session on conn. timeout bounds each dashboard
// computation; 0 means no bound.
func NewClient(hub *Hub, conn Connection, service DashboardProvider, cfg config.WebSocketConfig, timeout time.Duration, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = config.WebSocketPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = (cfg.PongWait * 9) / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = config.WebSocketMaxMessage
	}

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	if traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		validator:   mw.NewValidator(),
		cfg:         cfg,
		timeout:     timeout,
		send:        make(chan []byte, sendBuffer),
		ctx:         ctx,
		cancel:      cancel,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("session_id", id),
		),
	}
}

// ID returns the session ID
func (c *Client) ID() string {
	return c.id
}

func (c *Client) traceContext() context.Context {
	return c.ctx
}

// close ends both pumps
func (c *Client) close() {
	c.cancel()
	c.conn.Close()
}

// Greet queues the connection message carrying the session ID and the
// dataset bounds.
func (c *Client) Greet() {
	data := map[string]interface{}{"status": "connected"}
	if info, err := c.service.Range(c.ctx); err == nil {
		data["range"] = map[string]string{
			"start": info.Range.Start.Format(domain.DateLayout),
			"end":   info.Range.End.Format(domain.DateLayout),
		}
		data["rows"] = info.Rows
	}
	c.enqueue(Message{Type: TypeConnection, Data: data})
}

// ReadPump reads requests until the peer goes away and answers each one.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.InfoContext(c.ctx, "WebSocket session closed (readPump)",
			slog.Duration("session_duration", time.Since(c.connectedAt)),
			slog.Int64("requests", c.requests))
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		if !c.handle(payload) {
			return
		}
	}
}

// handle answers one client message. It returns false when the session
// can no longer be written to.
func (c *Client) handle(payload []byte) bool {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return c.enqueue(Message{Type: TypeError, Error: &ErrorPayload{
			Code:    "INVALID_REQUEST",
			Status:  400,
			Message: "message must be a JSON object",
		}})
	}

	switch req.Type {
	case TypeHeartbeat:
		c.logger.DebugContext(c.ctx, "Heartbeat received")
		return true
	case TypeRange:
		c.requests++
		return c.enqueue(c.answer(req))
	default:
		return c.enqueue(Message{Type: TypeError, ID: req.ID, Error: &ErrorPayload{
			Code:    "INVALID_REQUEST",
			Status:  400,
			Message: "unknown message type: " + req.Type,
		}})
	}
}

func (c *Client) answer(req Request) Message {
	started := time.Now()
	q := req.Query()

	if err := c.validator.ValidateStruct(q); err != nil {
		return Message{Type: TypeError, ID: req.ID, Error: newErrorPayload(err)}
	}

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dashboard, err := c.service.Dashboard(ctx, q)
	if err != nil {
		c.logger.DebugContext(ctx, "range request failed",
			slog.String("start", req.Start),
			slog.String("end", req.End),
			slog.String("error", err.Error()))
		return Message{Type: TypeError, ID: req.ID, Error: newErrorPayload(err)}
	}

	c.logger.DebugContext(ctx, "range request served",
		slog.String("range", dashboard.Range.String()),
		slog.Bool("empty", dashboard.Empty),
		slog.Duration("duration", time.Since(started)))
	return Message{Type: TypeDashboard, ID: req.ID, Data: dashboard}
}

// enqueue queues msg without blocking. A full queue means the peer stopped
// reading and the session is dropped.
func (c *Client) enqueue(msg Message) bool {
	msg.SessionID = c.id
	msg.Timestamp = time.Now().UTC()

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "Error marshaling message",
			slog.String("message_type", msg.Type),
			slog.String("error", err.Error()))
		return true
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.WarnContext(c.ctx, "Session send buffer full, disconnecting")
		return false
	}
}

// WritePump writes queued messages and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-c.ctx.Done():
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
