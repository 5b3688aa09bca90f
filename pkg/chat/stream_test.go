package chat_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/clawdbot/go-companion/pkg/chat"
)

func TestSendStreaming(t *testing.T) {
	parts := []string{"Hola", ", soy ", "Clawdbot", "."}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Stream bool `json:"stream"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if !req.Stream {
			t.Error("expected stream true with OnChunk")
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.Header().Set("Content-Type", "text/plain")
		for _, part := range parts {
			io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := chat.NewClient(chat.WithServerURL(server.URL))
	defer client.Close()

	var deltas []string
	var accumulations []string
	resp, err := client.Send(context.Background(), chat.Request{
		Message: "preséntate",
		OnChunk: func(delta, accumulated string) {
			deltas = append(deltas, delta)
			accumulations = append(accumulations, accumulated)
		},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	full := strings.Join(parts, "")
	if resp.Text != full {
		t.Errorf("expected %q, got %q", full, resp.Text)
	}

	if len(deltas) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if strings.Join(deltas, "") != full {
		t.Errorf("deltas do not reassemble response: %q", strings.Join(deltas, ""))
	}

	// Each accumulation extends the previous one and ends with the full text.
	prev := ""
	for i, acc := range accumulations {
		if !strings.HasPrefix(acc, prev) {
			t.Errorf("accumulation %d does not extend previous: %q -> %q", i, prev, acc)
		}
		if len(acc) <= len(prev) {
			t.Errorf("accumulation %d did not grow", i)
		}
		prev = acc
	}
	if prev != full {
		t.Errorf("final accumulation %q != %q", prev, full)
	}
}

func TestSendStreamingSplitRune(t *testing.T) {
	// "café" with the é (0xC3 0xA9) split across two flushes.
	reply := "café"
	chunks := [][]byte{
		{'c', 'a', 'f', 0xC3},
		{0xA9},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain")
		for _, chunk := range chunks {
			w.Write(chunk)
			flusher.Flush()
			time.Sleep(20 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := chat.NewClient(chat.WithServerURL(server.URL))
	defer client.Close()

	var deltas []string
	resp, err := client.Send(context.Background(), chat.Request{
		Message: "hola",
		OnChunk: func(delta, accumulated string) {
			if !utf8.ValidString(delta) {
				t.Errorf("delta %q is not valid UTF-8", delta)
			}
			if !utf8.ValidString(accumulated) {
				t.Errorf("accumulated %q is not valid UTF-8", accumulated)
			}
			deltas = append(deltas, delta)
		},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if resp.Text != reply {
		t.Errorf("expected %q, got %q", reply, resp.Text)
	}
	if strings.Join(deltas, "") != reply {
		t.Errorf("deltas do not reassemble reply: %q", strings.Join(deltas, ""))
	}
}

func TestSendStreamingInvalidBytesFlushed(t *testing.T) {
	// A lone continuation byte can never complete a rune and must not be
	// held back forever.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{'o', 'k', 0xC3})
	}))
	defer server.Close()

	client := chat.NewClient(chat.WithServerURL(server.URL))
	defer client.Close()

	resp, err := client.Send(context.Background(), chat.Request{
		Message: "hola",
		OnChunk: func(delta, accumulated string) {},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(resp.Text) != 3 {
		t.Errorf("expected trailing byte flushed at EOF, got %q", resp.Text)
	}
}

func TestSendStreamingEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := chat.NewClient(chat.WithServerURL(server.URL))
	defer client.Close()

	called := 0
	resp, err := client.Send(context.Background(), chat.Request{
		Message: "hola",
		OnChunk: func(delta, accumulated string) { called++ },
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("expected empty text, got %q", resp.Text)
	}
	if called != 0 {
		t.Errorf("expected no chunks for empty body, got %d", called)
	}
}
