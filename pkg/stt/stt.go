// Package stt provides speech-to-text transcription through Deepgram.
//
// Two modes are supported: prerecorded transcription of a complete audio
// buffer (the path the companion app uses after recording a voice note),
// and a live websocket session for callers that hold a microphone stream.
//
// Example usage:
//
//	provider, _ := stt.NewDeepgram(
//	    stt.WithAPIKey(os.Getenv("DEEPGRAM_API_KEY")),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Transcribe(ctx, audioBytes, "audio/wav")
//	fmt.Println(result.Text)
package stt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Provider defines the prerecorded transcription interface.
type Provider interface {
	// Transcribe submits a complete audio buffer and returns the
	// transcript. An empty transcript is not an error; callers decide
	// whether silence is a failure.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error)

	// Name identifies the provider.
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcript of the first channel's first alternative.
	// Empty when no speech was recognized.
	Text string

	// Confidence is the provider's confidence score, when reported.
	Confidence float64

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// ReadAudioFile loads an audio file and guesses its MIME type from the
// file extension. Unknown extensions default to audio/wav, which matches
// what the recorder produces.
func ReadAudioFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, MIMEFromExtension(filepath.Ext(path)), nil
}

// MIMEFromExtension maps an audio file extension to its MIME type.
func MIMEFromExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp3":
		return "audio/mpeg"
	case "ogg", "oga":
		return "audio/ogg"
	case "m4a", "mp4":
		return "audio/mp4"
	case "flac":
		return "audio/flac"
	case "webm":
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
