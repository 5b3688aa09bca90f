// Package typewriter replays a complete text string at a humanlike pace.
//
// Backends that return a full response at once still deserve progressive
// display; Stream decouples the perceived typing pace from network
// delivery by emitting one character at a time with character, word, and
// sentence aware pauses.
package typewriter

import (
	"context"
	"strings"
	"time"
)

// Options controls the pacing of a stream.
type Options struct {
	// CharDelay is the pause after an ordinary character.
	CharDelay time.Duration

	// WordDelay is the pause after a space.
	WordDelay time.Duration

	// SentenceDelay is the pause after '.', '!' or '?'.
	SentenceDelay time.Duration
}

// DefaultOptions returns the pacing the companion app ships with.
func DefaultOptions() Options {
	return Options{
		CharDelay:     15 * time.Millisecond,
		WordDelay:     30 * time.Millisecond,
		SentenceDelay: 80 * time.Millisecond,
	}
}

// CharFunc receives each emitted character along with the accumulated
// text so far.
type CharFunc func(char rune, accumulated string)

// Stream emits text one character at a time through onChar, pausing
// after each according to opts. It returns the full text on completion,
// or the accumulated prefix and ctx.Err() when cancelled mid-stream.
// Each call is an independent sequence; restarting means calling again.
func Stream(ctx context.Context, text string, onChar CharFunc, opts Options) (string, error) {
	if opts.CharDelay <= 0 && opts.WordDelay <= 0 && opts.SentenceDelay <= 0 {
		opts = DefaultOptions()
	}

	var accumulated strings.Builder

	for _, char := range text {
		accumulated.WriteRune(char)
		if onChar != nil {
			onChar(char, accumulated.String())
		}

		select {
		case <-time.After(delayFor(char, opts)):
		case <-ctx.Done():
			return accumulated.String(), ctx.Err()
		}
	}

	return accumulated.String(), nil
}

// delayFor picks the pause that follows an emitted character.
func delayFor(char rune, opts Options) time.Duration {
	switch char {
	case ' ':
		return opts.WordDelay
	case '.', '!', '?':
		return opts.SentenceDelay
	default:
		return opts.CharDelay
	}
}
