package chat

import (
	"context"
	"sync"
	"time"
)

// Mock implements Sender for testing.
type Mock struct {
	// SendFunc is called when Send is invoked.
	// If nil, echoes the message back.
	SendFunc func(ctx context.Context, req Request) (*Response, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method  string
	Message string
	Time    time.Time
}

// NewMock creates a mock that replies with the given text.
func NewMock(reply string) *Mock {
	return &Mock{
		SendFunc: func(ctx context.Context, req Request) (*Response, error) {
			if req.OnChunk != nil {
				req.OnChunk(reply, reply)
			}
			return &Response{Text: reply, SessionID: req.SessionID, LatencyMs: 5}, nil
		},
	}
}

// WithError returns a mock whose Send always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		SendFunc: func(ctx context.Context, req Request) (*Response, error) {
			return nil, err
		},
	}
}

// Send calls SendFunc and records the call.
func (m *Mock) Send(ctx context.Context, req Request) (*Response, error) {
	m.recordCall("Send", req.Message)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return &Response{Text: req.Message, SessionID: req.SessionID}, nil
}

func (m *Mock) recordCall(method, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Message: message, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Verify Mock implements Sender at compile time.
var _ Sender = (*Mock)(nil)
