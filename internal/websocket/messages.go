package websocket

import (
	"errors"
	"time"

	apierrors "ecomdash/internal/errors"
	"ecomdash/internal/services"
)

// Message types exchanged on a dashboard session
const (
	TypeConnection = "connection"
	TypeRange      = "range"
	TypeDashboard  = "dashboard"
	TypeError      = "error"
	TypeHeartbeat  = "heartbeat"
)

// Request is a client message. Only TypeRange and TypeHeartbeat are
// understood; ID is echoed back on the reply.
type Request struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Top   int    `json:"top,omitempty"`
}

// Query converts a range request to a dashboard query.
func (r Request) Query() services.DashboardQuery {
	return services.DashboardQuery{Start: r.Start, End: r.End, Top: r.Top}
}

// Message is a server message.
type Message struct {
	Type      string        `json:"type"`
	ID        string        `json:"id,omitempty"`
	SessionID string        `json:"session_id"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ErrorPayload mirrors the error_code and details members of the HTTP
// problem responses.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// newErrorPayload classifies err the same way the HTTP handlers do.
// Unclassified errors are reported without their text.
func newErrorPayload(err error) *ErrorPayload {
	var apiErr *apierrors.APIError
	if errors.As(services.MapError(err), &apiErr) {
		return &ErrorPayload{
			Code:    apiErr.ErrorCode,
			Status:  apiErr.StatusCode,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}
	}
	internal := apierrors.ErrInternalServer
	return &ErrorPayload{
		Code:    internal.ErrorCode,
		Status:  internal.StatusCode,
		Message: internal.Message,
	}
}
