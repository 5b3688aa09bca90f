package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const deepgramLiveURL = "wss://api.deepgram.com/v1/listen"

// TranscriptFunc receives live transcripts. isFinal marks a finalized
// segment; interim results may be revised by later messages.
type TranscriptFunc func(text string, isFinal bool)

// LiveSession is a realtime Deepgram transcription session over websocket.
// Create one with NewLiveSession, stream audio with SendAudio, and Close
// when the utterance is done.
type LiveSession struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// cbMu guards the callbacks, which may be set while the read loop
	// is already delivering messages.
	cbMu           sync.Mutex
	onTranscript   TranscriptFunc
	onUtteranceEnd func()

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewLiveSession dials the realtime transcription endpoint and starts
// reading responses. Callbacks may be set via OnTranscript /
// OnUtteranceEnd at any time; set them before sending audio to avoid
// dropping early results.
func NewLiveSession(ctx context.Context, opts ...Option) (*LiveSession, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	liveURL := cfg.BaseURL
	if liveURL == "" {
		liveURL = deepgramLiveURL
	}

	q := url.Values{}
	q.Set("encoding", cfg.Encoding)
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("channels", strconv.Itoa(cfg.Channels))
	q.Set("language", cfg.Language)
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("utterance_end_ms", strconv.Itoa(cfg.UtteranceEndMs))

	header := http.Header{}
	header.Set("Authorization", "Token "+cfg.APIKey)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, liveURL+"?"+q.Encode(), header)
	if err != nil {
		return nil, WrapError(providerDeepgram, fmt.Errorf("dial live session: %w", err))
	}

	s := &LiveSession{
		conn:   conn,
		logger: cfg.Logger.With("component", "stt.deepgram.live"),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// OnTranscript sets the transcript callback.
// Messages delivered before a callback is set are dropped.
func (s *LiveSession) OnTranscript(fn TranscriptFunc) {
	s.cbMu.Lock()
	s.onTranscript = fn
	s.cbMu.Unlock()
}

// OnUtteranceEnd sets the callback fired when the speaker goes silent.
func (s *LiveSession) OnUtteranceEnd(fn func()) {
	s.cbMu.Lock()
	s.onUtteranceEnd = fn
	s.cbMu.Unlock()
}

func (s *LiveSession) transcriptFn() TranscriptFunc {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	return s.onTranscript
}

func (s *LiveSession) utteranceEndFn() func() {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	return s.onUtteranceEnd
}

// SendAudio streams raw PCM audio to the session.
func (s *LiveSession) SendAudio(pcm []byte) error {
	select {
	case <-s.done:
		return ErrNotConnected
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// Close sends the close handshake and tears down the connection.
func (s *LiveSession) Close() error {
	var retErr error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
		s.writeMu.Unlock()
		retErr = s.conn.Close()
	})
	return retErr
}

func (s *LiveSession) readLoop() {
	defer s.Close()

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				select {
				case <-s.done:
				default:
					s.logger.Warn("live session read error", "error", err)
				}
			}
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &head); err != nil {
			continue
		}

		switch head.Type {
		case "UtteranceEnd":
			if fn := s.utteranceEndFn(); fn != nil {
				fn()
			}
		case "Results":
			var resp liveTranscriptResponse
			if err := json.Unmarshal(message, &resp); err != nil {
				continue
			}
			if len(resp.Channel.Alternatives) == 0 {
				continue
			}
			text := resp.Channel.Alternatives[0].Transcript
			if fn := s.transcriptFn(); text != "" && fn != nil {
				fn(text, resp.IsFinal)
			}
		}
	}
}

// liveTranscriptResponse is the realtime Results message shape.
type liveTranscriptResponse struct {
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
	IsFinal bool `json:"is_final"`
}
