// Package voice sequences a full voice conversation turn:
// speech-to-text, chat completion, and text-to-speech, in strict order.
//
// The orchestrator depends on narrow capabilities (Transcriber, chat.Sender,
// Synthesizer) so any provider combination, or mocks in tests, can be
// plugged in. Stage progress flows to the caller through a callback that
// fires at the start of each stage and forwards the synthesis provider's
// sub-stages.
package voice

import (
	"context"
	"errors"

	"github.com/clawdbot/go-companion/pkg/stt"
	"github.com/clawdbot/go-companion/pkg/tts"
)

// Errors returned by the orchestrator.
var (
	// ErrNoSpeech is returned when transcription succeeds but yields an
	// empty transcript. Chat and synthesis are never attempted.
	ErrNoSpeech = errors.New("voice: no speech detected")

	// ErrNoTranscriber is returned when no STT provider is configured.
	ErrNoTranscriber = errors.New("voice: no transcriber configured")

	// ErrNoChat is returned when no chat backend is configured.
	ErrNoChat = errors.New("voice: no chat backend configured")
)

// Stage identifies pipeline progress during a voice turn.
// The three pipeline stages arrive strictly in order; between speaking
// and completion the chosen TTS provider's sub-stages (connecting,
// receiving, complete) are forwarded unchanged.
type Stage string

const (
	// StageTranscribing fires before speech-to-text begins.
	StageTranscribing Stage = "transcribing"

	// StageThinking fires before the chat request is sent.
	StageThinking Stage = "thinking"

	// StageSpeaking fires before synthesis begins.
	StageSpeaking Stage = "speaking"
)

// ProgressFunc receives stage notifications during a turn.
// Callbacks are invoked synchronously and never after ProcessTurn returns.
type ProgressFunc func(stage Stage)

// Transcriber is the speech-to-text capability the orchestrator needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*stt.Result, error)
}

// Synthesizer is the text-to-speech capability the orchestrator needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, onProgress tts.ProgressFunc) (*tts.AudioResult, error)
}

// TurnRequest is one end-to-end voice turn.
type TurnRequest struct {
	// Audio is the recorded utterance.
	Audio []byte

	// MIME is the audio media type (e.g. "audio/wav").
	MIME string

	// SessionID overrides the chat client's configured session when set.
	SessionID string

	// OnProgress, when non-nil, receives stage tags as the turn advances.
	OnProgress ProgressFunc
}

// TurnResult aggregates the outcome of a voice turn.
// Synthesis failure is non-fatal: the transcript and reply are still
// usable, so the turn succeeds with Audio nil and AudioErr set.
type TurnResult struct {
	// Transcription is what the user said.
	Transcription string

	// Response is the assistant's reply.
	Response string

	// Audio is the synthesized reply, nil when synthesis failed or no
	// provider was configured.
	Audio []byte

	// AudioFormat describes Audio when present.
	AudioFormat tts.Format

	// AudioErr records why Audio is nil, when it is.
	AudioErr error

	// SessionID is the chat session the turn belongs to.
	SessionID string

	// ChatLatencyMs is the chat request round-trip in milliseconds.
	ChatLatencyMs int64
}
