package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clawdbot/go-companion/internal/httpc"
)

// Client talks to the Clawdbot chat backend.
// It is safe for concurrent use.
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a backend client.
// The server URL may be empty at construction time; operations that need
// it fail with ErrNoServerURL.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Client{
		config: cfg,
		client: httpc.New(cfg.Timeout),
		logger: cfg.Logger.With("component", "chat.client"),
	}
}

// Health probes GET /health with a hard deadline.
// It makes no network call when the server URL is unconfigured, and is
// safe to retry freely.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", base+"/health", nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "server error"}
	}

	var data struct {
		Status   string `json:"status"`
		Clawdbot string `json:"clawdbot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode health response: %w", err)}
	}

	return &HealthStatus{
		OK:       data.Status == "ok",
		Clawdbot: data.Clawdbot,
	}, nil
}

// Send submits a conversation turn.
// Validation failures (empty message, missing server URL) return before
// any network call. With req.OnChunk set the response body is consumed
// incrementally; the returned Response always carries the full text.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.config.SessionID
	}

	payload, err := json.Marshal(map[string]interface{}{
		"message":   req.Message,
		"sessionId": sessionID,
		"stream":    req.OnChunk != nil,
	})
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", base+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	c.setHeaders(httpReq)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	if req.OnChunk != nil {
		text, err := readStream(resp.Body, req.OnChunk)
		if err != nil {
			return nil, &TransportError{Err: fmt.Errorf("read stream: %w", err)}
		}
		latency := time.Since(start).Milliseconds()
		c.logger.Debug("chat stream complete", "latency_ms", latency, "chars", len(text))
		return &Response{Text: text, SessionID: sessionID, LatencyMs: latency}, nil
	}

	var data struct {
		Success   bool   `json:"success"`
		Response  string `json:"response"`
		SessionID string `json:"sessionId"`
		Error     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}

	latency := time.Since(start).Milliseconds()
	c.logger.Debug("chat complete", "latency_ms", latency, "chars", len(data.Response))

	if !data.Success {
		msg := data.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &APIError{Message: msg}
	}

	if data.SessionID != "" {
		sessionID = data.SessionID
	}
	return &Response{Text: data.Response, SessionID: sessionID, LatencyMs: latency}, nil
}

// SendWithFile sends a message with an attachment description.
// Only the file's name and MIME type reach the backend, as a bracketed
// tag appended to the message (or standalone when the message is empty).
// The bytes themselves are never uploaded; this mirrors the mobile app's
// behavior and keeps the backend contract unchanged.
func (c *Client) SendWithFile(ctx context.Context, req Request, file FileInfo) (*Response, error) {
	tag := fmt.Sprintf("[Archivo adjunto: %s (%s)]", file.Name, file.MIME)
	if strings.TrimSpace(req.Message) == "" {
		req.Message = tag
	} else {
		req.Message = req.Message + "\n\n" + tag
	}
	return c.Send(ctx, req)
}

// ResetSession clears a conversation session on the backend.
// An empty sessionID falls back to the client's configured default.
func (c *Client) ResetSession(ctx context.Context, sessionID string) error {
	base, err := c.baseURL()
	if err != nil {
		return err
	}

	if sessionID == "" {
		sessionID = c.config.SessionID
	}

	payload, err := json.Marshal(map[string]string{"sessionId": sessionID})
	if err != nil {
		return &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", base+"/session/reset", bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Err: err}
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	c.logger.Debug("session reset", "session_id", sessionID)
	return nil
}

// SessionID returns the client's default session id.
func (c *Client) SessionID() string {
	return c.config.SessionID
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) baseURL() (string, error) {
	url := strings.TrimSuffix(strings.TrimSpace(c.config.ServerURL), "/")
	if url == "" {
		return "", ErrNoServerURL
	}
	return url, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}
}

// parseError reads and parses a non-200 response.
func (c *Client) parseError(resp *http.Response) error {
	var data struct {
		Error string `json:"error"`
	}

	message := http.StatusText(resp.StatusCode)
	if json.NewDecoder(resp.Body).Decode(&data) == nil && data.Error != "" {
		message = data.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

// Verify Client satisfies the orchestrator capability at compile time.
var _ Sender = (*Client)(nil)
