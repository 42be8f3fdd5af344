package websocket

import (
	"errors"
	"sync"
	"time"
)

// MockConnection is an in-memory Connection. ReadMessage blocks until a
// message is queued with AddReadMessage or the connection is closed.
type MockConnection struct {
	mu sync.Mutex

	incoming chan MockMessage
	closed   chan struct{}
	once     sync.Once

	WrittenMessages []MockMessage
	ReadDeadline    time.Time
	WriteDeadline   time.Time
	ReadLimit       int64
	PongHandler     func(string) error
	RemoteAddress   string
}

// MockMessage is one frame
type MockMessage struct {
	Type int
	Data []byte
	Err  error
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		incoming:      make(chan MockMessage, 16),
		closed:        make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	if m.IsClosed() {
		return errors.New("connection closed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WrittenMessages = append(m.WrittenMessages, MockMessage{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.incoming:
		return msg.Type, msg.Data, msg.Err
	case <-m.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *MockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *MockConnection) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

func (m *MockConnection) RemoteAddr() string {
	return m.RemoteAddress
}

// AddReadMessage queues a frame for ReadMessage
func (m *MockConnection) AddReadMessage(messageType int, data []byte, err error) {
	m.incoming <- MockMessage{Type: messageType, Data: data, Err: err}
}

// GetWrittenMessages returns a copy of the written frames
func (m *MockConnection) GetWrittenMessages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMessage, len(m.WrittenMessages))
	copy(out, m.WrittenMessages)
	return out
}
