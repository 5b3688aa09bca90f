package chat

import (
	"io"
	"strings"
	"unicode/utf8"
)

// readStream consumes a chunked text response body, invoking onChunk for
// every chunk in arrival order. No chunk is skipped or reordered; the
// returned string is the concatenation of all deltas.
//
// Network chunk boundaries can split a multibyte rune. An incomplete
// trailing sequence is held back and prepended to the next chunk, so
// onChunk only ever sees valid UTF-8. Whatever remains at EOF is flushed
// as-is.
func readStream(body io.Reader, onChunk ChunkFunc) (string, error) {
	var full strings.Builder
	buf := make([]byte, 4096)
	var tail []byte

	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := append(tail, buf[:n]...)
			boundary := runeBoundary(chunk)
			tail = append([]byte(nil), chunk[boundary:]...)
			if boundary > 0 {
				delta := string(chunk[:boundary])
				full.WriteString(delta)
				onChunk(delta, full.String())
			}
		}
		if err == io.EOF {
			if len(tail) > 0 {
				delta := string(tail)
				full.WriteString(delta)
				onChunk(delta, full.String())
			}
			return full.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// runeBoundary returns the length of the longest prefix of p that ends on
// a rune boundary. Only a trailing multibyte sequence that could still be
// completed by the next chunk is held back; bytes that can never start a
// rune pass through unchanged.
func runeBoundary(p []byte) int {
	for s := len(p) - 1; s >= 0 && s >= len(p)-utf8.UTFMax; s-- {
		if utf8.RuneStart(p[s]) {
			if utf8.FullRune(p[s:]) {
				return len(p)
			}
			return s
		}
	}
	return len(p)
}
