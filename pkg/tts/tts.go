// Package tts provides a unified interface for text-to-speech providers.
//
// The package supports the two hosted backends the companion app speaks to:
// ElevenLabs (per-voice endpoint with voice settings) and Cartesia
// (sonic-turbo over the tts/bytes endpoint). Both implement the Provider
// interface, so callers can switch providers without changing code, and a
// Chain can try them in priority order.
//
// Example usage:
//
//	provider, _ := tts.NewCartesia(
//	    tts.WithAPIKey(os.Getenv("CARTESIA_API_KEY")),
//	    tts.WithVoice("5ae6768d-7263-4c26-8d3a-a22976c534df"),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Hello world", nil)
//	// result.Audio contains MP3 audio bytes
package tts

import "context"

// Provider defines the TTS provider interface.
// All implementations must satisfy this interface for seamless provider switching.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	// onProgress, when non-nil, receives stage notifications strictly in
	// order: StageConnecting before the request is issued, StageReceiving
	// once response headers arrive, StageComplete after the audio payload
	// has been fully read. Each stage fires at most once per call, and
	// never after Synthesize returns.
	Synthesize(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error)

	// Name identifies the provider (e.g. "elevenlabs", "cartesia").
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// Stage identifies a point in the synthesis request lifecycle.
type Stage string

const (
	// StageConnecting fires before the synthesis request is issued.
	StageConnecting Stage = "connecting"

	// StageReceiving fires once response headers arrive, before the
	// audio body is read.
	StageReceiving Stage = "receiving"

	// StageComplete fires after the audio payload has been fully read.
	StageComplete Stage = "complete"
)

// ProgressFunc receives stage notifications during synthesis.
// Callbacks are invoked synchronously from the calling goroutine.
type ProgressFunc func(stage Stage)

// notify invokes fn if non-nil.
func (fn ProgressFunc) notify(stage Stage) {
	if fn != nil {
		fn(stage)
	}
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding.
	Format Format

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// Format describes the audio payload encoding.
type Format struct {
	// MIME is the payload media type (e.g. "audio/mpeg").
	MIME string

	// SampleRate in Hz.
	SampleRate int
}

// VoiceSettings controls voice characteristics for providers that support it.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0).
	// Lower values = more expressive/variable, higher = more consistent.
	Stability float64

	// SimilarityBoost controls how closely the voice matches the original (0.0-1.0).
	SimilarityBoost float64
}

// DefaultVoiceSettings returns the voice settings the companion app ships with.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}
