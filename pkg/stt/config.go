package stt

import (
	"log/slog"
	"time"
)

// Config holds transcription provider configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	APIKey  string
	BaseURL string

	// Model selection
	Model    string
	Language string

	// Timeouts
	Timeout time.Duration

	// Live session parameters
	SampleRate     int
	Channels       int
	Encoding       string
	UtteranceEndMs int

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring transcription providers.
type Option func(*Config)

// WithAPIKey sets the API key for the provider.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the transcription model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithLanguage sets the transcription language code.
func WithLanguage(language string) Option {
	return func(c *Config) {
		c.Language = language
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithSampleRate sets the live session input sample rate in Hz.
func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithUtteranceEnd sets the silence window, in milliseconds, after which
// a live session reports end of utterance.
func WithUtteranceEnd(ms int) Option {
	return func(c *Config) {
		c.UtteranceEndMs = ms
	}
}

// WithLogger sets the structured logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
// Model and language match what the companion app ships with.
func DefaultConfig() *Config {
	return &Config{
		Model:          "nova-2",
		Language:       "es",
		Timeout:        60 * time.Second,
		SampleRate:     16000,
		Channels:       1,
		Encoding:       "linear16",
		UtteranceEndMs: 1000,
		Logger:         slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
