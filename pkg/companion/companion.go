// Package companion is the service layer the chat-companion UI talks to.
//
// A Service owns the mutable settings and builds provider adapters from a
// consistent snapshot on every call, so a settings change never races an
// in-flight request. The UI surface is deliberately small: configure,
// health check, chat (optionally streamed), chat with attachment, a full
// voice turn, session reset, and humanlike text replay.
//
// Example usage:
//
//	svc := companion.New(companion.Settings{
//	    ServerURL:      "https://clawdbot.example.com",
//	    DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
//	    CartesiaAPIKey: os.Getenv("CARTESIA_API_KEY"),
//	})
//
//	turn, err := svc.ProcessVoice(ctx, audio, "audio/wav", "", func(stage voice.Stage) {
//	    fmt.Println("stage:", stage)
//	})
package companion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/clawdbot/go-companion/pkg/chat"
	"github.com/clawdbot/go-companion/pkg/stt"
	"github.com/clawdbot/go-companion/pkg/tts"
	"github.com/clawdbot/go-companion/pkg/typewriter"
	"github.com/clawdbot/go-companion/pkg/voice"
)

// Service is the collaborator surface exposed to the UI.
// It is safe for concurrent use; Configure may be called while requests
// are in flight and takes effect on the next call.
type Service struct {
	mu       sync.RWMutex
	settings Settings
	logger   *slog.Logger
}

// New creates a service from initial settings.
// Empty voice identities fall back to the stock voices, and an empty
// session id is replaced with a freshly minted one.
func New(settings Settings, opts ...ServiceOption) *Service {
	defaults := DefaultSettings()
	if settings.ElevenLabsVoiceID == "" {
		settings.ElevenLabsVoiceID = defaults.ElevenLabsVoiceID
	}
	if settings.CartesiaVoiceID == "" {
		settings.CartesiaVoiceID = defaults.CartesiaVoiceID
	}
	if settings.SessionID == "" {
		settings.SessionID = "mobile-" + uuid.NewString()
	}

	s := &Service{
		settings: settings,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "companion")
	return s
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// Configure overlays non-empty fields of partial onto the current
// settings. Omitted fields keep their existing values.
func (s *Service) Configure(partial Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Merge(partial)
}

// Config returns a redacted view of the current settings.
func (s *Service) Config() Snapshot {
	return s.current().snapshot()
}

// HealthCheck probes the chat backend. It fails fast: no network call
// without a configured server URL, and a hard 5-second bound otherwise.
func (s *Service) HealthCheck(ctx context.Context) (*chat.HealthStatus, error) {
	client := s.chatClient()
	defer client.Close()
	return client.Health(ctx)
}

// Chat sends a message to the backend. sessionID overrides the
// configured session when non-empty; onChunk, when non-nil, streams the
// reply progressively.
func (s *Service) Chat(ctx context.Context, message, sessionID string, onChunk chat.ChunkFunc) (*chat.Response, error) {
	client := s.chatClient()
	defer client.Close()
	return client.Send(ctx, chat.Request{
		Message:   message,
		SessionID: sessionID,
		OnChunk:   onChunk,
	})
}

// ChatWithFile sends a message with an attachment description.
// Only the file's name and MIME type reach the backend.
func (s *Service) ChatWithFile(ctx context.Context, message string, file chat.FileInfo, onChunk chat.ChunkFunc) (*chat.Response, error) {
	client := s.chatClient()
	defer client.Close()
	return client.SendWithFile(ctx, chat.Request{
		Message: message,
		OnChunk: onChunk,
	}, file)
}

// ProcessVoice runs a full voice turn: transcription, chat, synthesis.
// Synthesis failure is non-fatal; the result then carries Audio nil.
func (s *Service) ProcessVoice(ctx context.Context, audio []byte, mimeType, sessionID string, onProgress voice.ProgressFunc) (*voice.TurnResult, error) {
	cfg := s.current()

	transcriber, err := s.transcriber(cfg)
	if err != nil {
		return nil, err
	}
	defer transcriber.Close()

	synthesizer := s.synthesizer(cfg)
	if synthesizer != nil {
		defer synthesizer.Close()
	}

	chatter := s.chatClientFrom(cfg)
	defer chatter.Close()

	orch := voice.NewOrchestrator(transcriber, chatter, synthesizer, s.logger)
	return orch.ProcessTurn(ctx, voice.TurnRequest{
		Audio:      audio,
		MIME:       mimeType,
		SessionID:  sessionID,
		OnProgress: onProgress,
	})
}

// ProcessVoiceFile is ProcessVoice for an audio file on disk.
func (s *Service) ProcessVoiceFile(ctx context.Context, path, sessionID string, onProgress voice.ProgressFunc) (*voice.TurnResult, error) {
	audio, mimeType, err := stt.ReadAudioFile(path)
	if err != nil {
		return nil, err
	}
	return s.ProcessVoice(ctx, audio, mimeType, sessionID, onProgress)
}

// ResetSession clears a conversation session on the backend.
// An empty sessionID resets the configured default session.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	client := s.chatClient()
	defer client.Close()
	return client.ResetSession(ctx, sessionID)
}

// RotateSession mints a fresh session id, makes it the default, and
// returns it. The old session is left untouched on the backend.
func (s *Service) RotateSession() string {
	id := "mobile-" + uuid.NewString()
	s.mu.Lock()
	s.settings.SessionID = id
	s.mu.Unlock()
	return id
}

// StreamText replays text at a humanlike pace through onChar.
// Zero-valued options fall back to the stock pacing.
func (s *Service) StreamText(ctx context.Context, text string, onChar typewriter.CharFunc, opts typewriter.Options) (string, error) {
	return typewriter.Stream(ctx, text, onChar, opts)
}

func (s *Service) current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Service) chatClient() *chat.Client {
	return s.chatClientFrom(s.current())
}

func (s *Service) chatClientFrom(cfg Settings) *chat.Client {
	return chat.NewClient(
		chat.WithServerURL(cfg.ServerURL),
		chat.WithAuthToken(cfg.AuthToken),
		chat.WithSessionID(cfg.SessionID),
		chat.WithLogger(s.logger),
	)
}

func (s *Service) transcriber(cfg Settings) (stt.Provider, error) {
	return stt.NewDeepgram(
		stt.WithAPIKey(cfg.DeepgramAPIKey),
		stt.WithLogger(s.logger),
	)
}

// synthesizer builds the TTS provider chain from the current settings:
// Cartesia first when configured, ElevenLabs as fallback. Returns nil
// when neither provider has credentials.
func (s *Service) synthesizer(cfg Settings) tts.Provider {
	var providers []tts.Provider

	if cfg.CartesiaAPIKey != "" {
		p, err := tts.NewCartesia(
			tts.WithAPIKey(cfg.CartesiaAPIKey),
			tts.WithVoice(cfg.CartesiaVoiceID),
			tts.WithLogger(s.logger),
		)
		if err == nil {
			providers = append(providers, p)
		} else {
			s.logger.Warn("cartesia unavailable", "error", err)
		}
	}

	if cfg.ElevenLabsAPIKey != "" {
		p, err := tts.NewElevenLabs(
			tts.WithAPIKey(cfg.ElevenLabsAPIKey),
			tts.WithVoice(cfg.ElevenLabsVoiceID),
			tts.WithLogger(s.logger),
		)
		if err == nil {
			providers = append(providers, p)
		} else {
			s.logger.Warn("elevenlabs unavailable", "error", err)
		}
	}

	if len(providers) == 0 {
		return nil
	}

	chain, err := tts.NewChainWithLogger(s.logger, providers...)
	if err != nil {
		return nil
	}
	return chain
}
