package tts

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// doWithRetry performs the request, retrying on transport errors, 429 and
// 5xx responses. The request body is restored from the original payload
// before each retry.
func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, body []byte, cfg *Config, provider string, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay * time.Duration(attempt)):
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = WrapError(provider, err)
			logger.Warn("request failed, retrying",
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				Message:    http.StatusText(resp.StatusCode),
				Provider:   provider,
			}
			logger.Warn("retrying request",
				"attempt", attempt+1,
				"status", resp.StatusCode,
			)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}
