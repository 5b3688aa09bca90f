package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clawdbot/go-companion/internal/httpc"
)

const (
	deepgramBaseURL  = "https://api.deepgram.com"
	providerDeepgram = "deepgram"
)

// Deepgram implements Provider for Deepgram prerecorded transcription.
type Deepgram struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewDeepgram creates a new Deepgram transcription provider.
func NewDeepgram(opts ...Option) (*Deepgram, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepgramBaseURL
	}

	return &Deepgram{
		config:  cfg,
		client:  httpc.New(cfg.Timeout),
		logger:  cfg.Logger.With("component", "stt.deepgram"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Transcribe submits raw audio bytes and returns the transcript.
// A response with no recognized speech yields an empty Text, not an error.
func (d *Deepgram) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Result, error) {
	if len(audio) == 0 {
		return nil, ErrNoAudio
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}

	start := time.Now()

	q := url.Values{}
	q.Set("model", d.config.Model)
	q.Set("language", d.config.Language)

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+"/v1/listen?"+q.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, WrapError(providerDeepgram, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Authorization", "Token "+d.config.APIKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, WrapError(providerDeepgram, fmt.Errorf("transcribe request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, d.parseError(resp)
	}

	var result listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerDeepgram, fmt.Errorf("decode response: %w", err))
	}

	// Missing channels or alternatives degrade to an empty transcript.
	var text string
	var confidence float64
	if len(result.Results.Channels) > 0 && len(result.Results.Channels[0].Alternatives) > 0 {
		alt := result.Results.Channels[0].Alternatives[0]
		text = alt.Transcript
		confidence = alt.Confidence
	}

	latency := time.Since(start).Milliseconds()
	d.logger.Debug("transcription complete",
		"bytes", len(audio),
		"chars", len(text),
		"latency_ms", latency,
		"model", d.config.Model,
	)

	return &Result{
		Text:       text,
		Confidence: confidence,
		LatencyMs:  latency,
	}, nil
}

// Name identifies the provider.
func (d *Deepgram) Name() string { return providerDeepgram }

// Close releases resources held by the provider.
func (d *Deepgram) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (d *Deepgram) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		ErrCode string `json:"err_code"`
		ErrMsg  string `json:"err_msg"`
	}

	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.ErrMsg != "" {
		message = errResp.ErrMsg
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerDeepgram,
	}
}

// listenResponse is the prerecorded transcription response shape.
// The transcript lives at results.channels[0].alternatives[0].transcript.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Verify Deepgram implements Provider at compile time.
var _ Provider = (*Deepgram)(nil)
