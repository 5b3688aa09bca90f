package voice

import (
	"sync"
	"time"
)

// Metrics tracks latency at each stage of one voice turn.
// All durations are measured from the start of the turn.
type Metrics struct {
	TurnStartTime  time.Time
	TranscriptTime time.Time
	ResponseTime   time.Time
	TurnDoneTime   time.Time

	// Computed stage latencies
	STTLatency   time.Duration // turn start to transcript
	ChatLatency  time.Duration // transcript to chat reply
	TTSLatency   time.Duration // chat reply to turn done
	TotalLatency time.Duration // end to end
}

// MetricsCollector collects latency metrics across voice turns.
// It is goroutine-safe.
type MetricsCollector struct {
	mu      sync.Mutex
	current Metrics
	history []Metrics
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		history: make([]Metrics, 0, 100),
	}
}

// MarkTurnStart resets the current turn and records its start time.
func (m *MetricsCollector) MarkTurnStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Metrics{TurnStartTime: time.Now()}
}

// MarkTranscript records when transcription completed.
func (m *MetricsCollector) MarkTranscript() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TranscriptTime = time.Now()
	if !m.current.TurnStartTime.IsZero() {
		m.current.STTLatency = m.current.TranscriptTime.Sub(m.current.TurnStartTime)
	}
}

// MarkResponse records when the chat reply arrived.
func (m *MetricsCollector) MarkResponse() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.ResponseTime = time.Now()
	if !m.current.TranscriptTime.IsZero() {
		m.current.ChatLatency = m.current.ResponseTime.Sub(m.current.TranscriptTime)
	}
}

// MarkTurnDone records when the turn fully completed and archives it.
func (m *MetricsCollector) MarkTurnDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.TurnDoneTime = time.Now()
	if !m.current.ResponseTime.IsZero() {
		m.current.TTSLatency = m.current.TurnDoneTime.Sub(m.current.ResponseTime)
	}
	if !m.current.TurnStartTime.IsZero() {
		m.current.TotalLatency = m.current.TurnDoneTime.Sub(m.current.TurnStartTime)
	}
	m.history = append(m.history, m.current)
	if len(m.history) > 100 {
		m.history = m.history[1:]
	}
}

// Current returns the current turn's metrics snapshot.
func (m *MetricsCollector) Current() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Average returns average latencies over recent turns.
func (m *MetricsCollector) Average() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.history) == 0 {
		return Metrics{}
	}

	var avg Metrics
	for _, h := range m.history {
		avg.STTLatency += h.STTLatency
		avg.ChatLatency += h.ChatLatency
		avg.TTSLatency += h.TTSLatency
		avg.TotalLatency += h.TotalLatency
	}

	n := time.Duration(len(m.history))
	avg.STTLatency /= n
	avg.ChatLatency /= n
	avg.TTSLatency /= n
	avg.TotalLatency /= n

	return avg
}

// FormatLatency returns a formatted string of the turn's latencies.
func (m *Metrics) FormatLatency() string {
	return formatDuration(m.STTLatency) + " STT | " +
		formatDuration(m.ChatLatency) + " CHAT | " +
		formatDuration(m.TTSLatency) + " TTS | " +
		formatDuration(m.TotalLatency) + " TOTAL"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "---ms"
	}
	return d.Round(time.Millisecond).String()
}
