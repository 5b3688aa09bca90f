package chat

import (
	"log/slog"
	"time"
)

// Config holds backend client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// ServerURL is the Clawdbot backend base URL.
	ServerURL string

	// AuthToken, when set, is sent as a bearer token on every request.
	AuthToken string

	// SessionID is the default conversation session.
	SessionID string

	// Timeout bounds chat and reset requests.
	Timeout time.Duration

	// HealthTimeout bounds the liveness probe. The probe must fail fast.
	HealthTimeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithServerURL sets the backend base URL.
func WithServerURL(url string) Option {
	return func(c *Config) {
		c.ServerURL = url
	}
}

// WithAuthToken sets the bearer token.
func WithAuthToken(token string) Option {
	return func(c *Config) {
		c.AuthToken = token
	}
}

// WithSessionID sets the default conversation session.
func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

// WithTimeout sets the request timeout for chat and reset calls.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithHealthTimeout sets the liveness probe timeout.
func WithHealthTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HealthTimeout = timeout
	}
}

// WithLogger sets the structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:       60 * time.Second,
		HealthTimeout: 5 * time.Second,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
