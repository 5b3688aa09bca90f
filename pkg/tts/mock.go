package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// Behavior can be customized via function fields.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent audio and emits all progress stages in order.
	SynthesizeFunc func(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	// ProviderName overrides the reported name. Defaults to "mock".
	ProviderName string

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// NewMock creates a new mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error) {
			onProgress.notify(StageConnecting)
			onProgress.notify(StageReceiving)

			// ~20ms of silence per character gives roughly natural pacing.
			silence := make([]byte, len(text)*960)

			onProgress.notify(StageComplete)

			return &AudioResult{
				Audio:     silence,
				Format:    Format{MIME: "audio/mpeg", SampleRate: 44100},
				CharCount: len(text),
				LatencyMs: 10,
			}, nil
		},
	}
}

// WithError returns a mock whose Synthesize always returns the given error.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error) {
			return nil, err
		},
	}
}

// Synthesize calls SynthesizeFunc and records the call.
func (m *Mock) Synthesize(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error) {
	m.recordCall("Synthesize", text)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, onProgress)
	}
	return nil, WrapError(m.Name(), ErrProviderUnavailable)
}

// Name identifies the provider.
func (m *Mock) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", "")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *Mock) recordCall(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method: method,
		Text:   text,
		Time:   time.Now(),
	})
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

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
