package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clawdbot/go-companion/internal/httpc"
)

const (
	cartesiaBaseURL  = "https://api.cartesia.ai"
	cartesiaVersion  = "2025-04-16"
	providerCartesia = "cartesia"
)

// Cartesia model IDs.
const (
	// ModelSonicTurbo is the low-latency model used for conversation turns.
	ModelSonicTurbo = "sonic-turbo"

	// ModelSonic2 is the higher quality model.
	ModelSonic2 = "sonic-2"
)

// Cartesia implements Provider for the Cartesia bytes API.
// Synthesis goes through POST /tts/bytes and returns the complete audio
// payload in one response.
type Cartesia struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewCartesia creates a new Cartesia TTS provider.
func NewCartesia(opts ...Option) (*Cartesia, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ModelID == "" {
		cfg.ModelID = ModelSonicTurbo
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cartesiaBaseURL
	}

	return &Cartesia{
		config:  cfg,
		client:  httpc.New(cfg.Timeout),
		logger:  cfg.Logger.With("component", "tts.cartesia"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Synthesize converts text to audio, returning the complete audio buffer.
func (c *Cartesia) Synthesize(ctx context.Context, text string, onProgress ProgressFunc) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()

	body, err := json.Marshal(map[string]interface{}{
		"model_id":   c.config.ModelID,
		"transcript": text,
		"voice": map[string]string{
			"mode": "id",
			"id":   c.config.VoiceID,
		},
		"output_format": map[string]interface{}{
			"container":   "mp3",
			"encoding":    "mp3",
			"sample_rate": 44100,
		},
	})
	if err != nil {
		return nil, WrapError(providerCartesia, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerCartesia, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", "application/json")

	onProgress.notify(StageConnecting)

	resp, err := doWithRetry(ctx, c.client, req, body, c.config, providerCartesia, c.logger)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	onProgress.notify(StageReceiving)

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerCartesia, fmt.Errorf("read response: %w", err))
	}

	onProgress.notify(StageComplete)

	latency := time.Since(start).Milliseconds()
	c.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"model", c.config.ModelID,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    Format{MIME: "audio/mpeg", SampleRate: 44100},
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Name identifies the provider.
func (c *Cartesia) Name() string { return providerCartesia }

// Close releases resources held by the provider.
func (c *Cartesia) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
// Cartesia returns either a JSON {"error": ...} object or plain text.
func (c *Cartesia) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error string `json:"error"`
	}

	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerCartesia,
	}
}

// Verify Cartesia implements Provider at compile time.
var _ Provider = (*Cartesia)(nil)
