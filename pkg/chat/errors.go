package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoServerURL is returned when no backend URL is configured.
	// Operations fail with this error before any network call.
	ErrNoServerURL = errors.New("chat: server URL not configured")

	// ErrEmptyMessage is returned when the message is empty or
	// whitespace only.
	ErrEmptyMessage = errors.New("chat: message cannot be empty")
)

// APIError represents an error response from the backend.
// Message carries the backend-reported error when the response body
// included one.
type APIError struct {
	// StatusCode is the HTTP status code. Zero when the backend returned
	// 200 with success=false.
	StatusCode int

	// Message is the error message from the backend.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat: backend error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("chat: backend error: %s", e.Message)
}

// IsRetryable returns true if the request should be retried.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// TransportError wraps a network-level failure reaching the backend.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("chat: transport: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
