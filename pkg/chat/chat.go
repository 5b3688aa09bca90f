// Package chat provides the client for the Clawdbot chat backend.
//
// The backend exposes three endpoints: GET /health for a liveness probe,
// POST /chat for conversation turns (single JSON response or a chunked
// text stream), and POST /session/reset to clear a conversation session.
//
// Example usage:
//
//	client, _ := chat.NewClient(
//	    chat.WithServerURL("https://clawdbot.example.com"),
//	    chat.WithAuthToken(token),
//	)
//	resp, err := client.Send(ctx, chat.Request{Message: "hola"})
package chat

import "context"

// Sender is the capability the voice orchestrator needs from this package.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// ChunkFunc receives streamed response chunks in arrival order.
// delta is the newly received text; accumulated is the full response so far.
type ChunkFunc func(delta, accumulated string)

// Request is a single conversation turn.
type Request struct {
	// Message is the user's message. Must be non-empty.
	Message string

	// SessionID overrides the client's configured session when set.
	SessionID string

	// OnChunk, when non-nil, requests a streamed response and receives
	// every chunk in arrival order. The final Response still carries the
	// complete accumulated text.
	OnChunk ChunkFunc
}

// Response is the backend's reply to a conversation turn.
type Response struct {
	// Text is the complete assistant reply.
	Text string

	// SessionID is the session the reply belongs to.
	SessionID string

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// HealthStatus reports the backend's liveness probe result.
type HealthStatus struct {
	// OK is true when the backend reported status "ok".
	OK bool

	// Clawdbot is the server identity string from the probe response.
	Clawdbot string
}

// FileInfo describes an attachment for SendWithFile.
// Only the description (name and MIME type) reaches the backend; the
// file bytes are never uploaded.
type FileInfo struct {
	Name string
	MIME string
}
