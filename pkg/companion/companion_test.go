package companion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clawdbot/go-companion/pkg/chat"
	"github.com/clawdbot/go-companion/pkg/companion"
	"github.com/clawdbot/go-companion/pkg/stt"
	"github.com/clawdbot/go-companion/pkg/typewriter"
)

func TestNew(t *testing.T) {
	t.Run("Mints session id", func(t *testing.T) {
		svc := companion.New(companion.Settings{})
		cfg := svc.Config()
		if !strings.HasPrefix(cfg.SessionID, "mobile-") {
			t.Errorf("expected mobile- prefix, got %s", cfg.SessionID)
		}
		if len(cfg.SessionID) <= len("mobile-") {
			t.Error("expected minted session id suffix")
		}
	})

	t.Run("Keeps provided session id", func(t *testing.T) {
		svc := companion.New(companion.Settings{SessionID: "mobile-fixed"})
		if got := svc.Config().SessionID; got != "mobile-fixed" {
			t.Errorf("expected mobile-fixed, got %s", got)
		}
	})

	t.Run("Fills default voices", func(t *testing.T) {
		svc := companion.New(companion.Settings{})
		cfg := svc.Config()
		if cfg.ElevenLabsVoiceID != companion.DefaultElevenLabsVoiceID {
			t.Errorf("expected default ElevenLabs voice, got %s", cfg.ElevenLabsVoiceID)
		}
		if cfg.CartesiaVoiceID != companion.DefaultCartesiaVoiceID {
			t.Errorf("expected default Cartesia voice, got %s", cfg.CartesiaVoiceID)
		}
	})

	t.Run("Keeps provided voices", func(t *testing.T) {
		svc := companion.New(companion.Settings{CartesiaVoiceID: "custom-voice"})
		if got := svc.Config().CartesiaVoiceID; got != "custom-voice" {
			t.Errorf("expected custom-voice, got %s", got)
		}
	})
}

func TestSettingsMerge(t *testing.T) {
	base := companion.Settings{
		ServerURL:      "https://old.example.com",
		AuthToken:      "old-token",
		SessionID:      "mobile-1",
		DeepgramAPIKey: "dg-key",
	}

	t.Run("Non-empty fields overwrite", func(t *testing.T) {
		s := base
		s.Merge(companion.Settings{ServerURL: "https://new.example.com"})
		if s.ServerURL != "https://new.example.com" {
			t.Errorf("expected new URL, got %s", s.ServerURL)
		}
	})

	t.Run("Empty fields leave existing values", func(t *testing.T) {
		s := base
		s.Merge(companion.Settings{CartesiaAPIKey: "ca-key"})
		if s.ServerURL != base.ServerURL {
			t.Errorf("server URL changed: %s", s.ServerURL)
		}
		if s.AuthToken != base.AuthToken {
			t.Errorf("auth token changed: %s", s.AuthToken)
		}
		if s.SessionID != base.SessionID {
			t.Errorf("session id changed: %s", s.SessionID)
		}
		if s.DeepgramAPIKey != base.DeepgramAPIKey {
			t.Errorf("deepgram key changed: %s", s.DeepgramAPIKey)
		}
		if s.CartesiaAPIKey != "ca-key" {
			t.Errorf("cartesia key not applied: %s", s.CartesiaAPIKey)
		}
	})

	t.Run("Merge of zero value is a no-op", func(t *testing.T) {
		s := base
		s.Merge(companion.Settings{})
		if s != base {
			t.Errorf("settings changed: %+v", s)
		}
	})
}

func TestSnapshotRedaction(t *testing.T) {
	svc := companion.New(companion.Settings{
		ServerURL:        "https://clawdbot.example.com",
		AuthToken:        "secret-token",
		DeepgramAPIKey:   "dg-secret",
		ElevenLabsAPIKey: "el-secret",
	})

	cfg := svc.Config()
	if !cfg.HasAuthToken || !cfg.HasDeepgramKey || !cfg.HasElevenLabsKey {
		t.Errorf("expected presence flags set: %+v", cfg)
	}
	if cfg.HasCartesiaKey {
		t.Error("expected cartesia flag unset")
	}
	if cfg.ServerURL != "https://clawdbot.example.com" {
		t.Errorf("expected server URL preserved, got %s", cfg.ServerURL)
	}
}

func TestConfigure(t *testing.T) {
	svc := companion.New(companion.Settings{ServerURL: "https://old.example.com"})

	svc.Configure(companion.Settings{CartesiaAPIKey: "ca-key"})

	cfg := svc.Config()
	if cfg.ServerURL != "https://old.example.com" {
		t.Errorf("server URL changed: %s", cfg.ServerURL)
	}
	if !cfg.HasCartesiaKey {
		t.Error("expected cartesia key applied")
	}
}

func TestRotateSession(t *testing.T) {
	svc := companion.New(companion.Settings{SessionID: "mobile-old"})

	id := svc.RotateSession()
	if !strings.HasPrefix(id, "mobile-") {
		t.Errorf("expected mobile- prefix, got %s", id)
	}
	if id == "mobile-old" {
		t.Error("expected a fresh session id")
	}
	if got := svc.Config().SessionID; got != id {
		t.Errorf("expected new id as default, got %s", got)
	}
}

func TestServiceChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(map[string]string{"status": "ok", "clawdbot": "running"})
		case "/chat":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":   true,
				"response":  "hola humano",
				"sessionId": "mobile-1",
			})
		case "/session/reset":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	svc := companion.New(companion.Settings{ServerURL: server.URL, SessionID: "mobile-1"})
	ctx := context.Background()

	t.Run("HealthCheck", func(t *testing.T) {
		status, err := svc.HealthCheck(ctx)
		if err != nil {
			t.Fatalf("health failed: %v", err)
		}
		if !status.OK {
			t.Error("expected healthy backend")
		}
	})

	t.Run("Chat", func(t *testing.T) {
		resp, err := svc.Chat(ctx, "hola", "", nil)
		if err != nil {
			t.Fatalf("chat failed: %v", err)
		}
		if resp.Text != "hola humano" {
			t.Errorf("unexpected reply: %q", resp.Text)
		}
	})

	t.Run("ResetSession", func(t *testing.T) {
		if err := svc.ResetSession(ctx, ""); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
	})
}

func TestServiceChatWithFile(t *testing.T) {
	var gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotMessage = req.Message
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "response": "recibido"})
	}))
	defer server.Close()

	svc := companion.New(companion.Settings{ServerURL: server.URL})

	_, err := svc.ChatWithFile(context.Background(), "mira", chat.FileInfo{Name: "foto.png", MIME: "image/png"}, nil)
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	want := "mira\n\n[Archivo adjunto: foto.png (image/png)]"
	if gotMessage != want {
		t.Errorf("expected %q, got %q", want, gotMessage)
	}
}

func TestBackendConnectionsReleased(t *testing.T) {
	var opened, closed atomic.Int32

	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "response": "ok"})
	}))
	server.Config.ConnState = func(c net.Conn, state http.ConnState) {
		switch state {
		case http.StateNew:
			opened.Add(1)
		case http.StateClosed:
			closed.Add(1)
		}
	}
	server.Start()
	defer server.Close()

	svc := companion.New(companion.Settings{ServerURL: server.URL})
	for i := 0; i < 3; i++ {
		if _, err := svc.Chat(context.Background(), "hola", "", nil); err != nil {
			t.Fatalf("chat failed: %v", err)
		}
	}

	// Every call builds its own client, so every connection must be
	// released once the call returns.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n := opened.Load(); n > 0 && closed.Load() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("connections not released: opened %d, closed %d", opened.Load(), closed.Load())
}

func TestProcessVoiceWithoutSTTKey(t *testing.T) {
	svc := companion.New(companion.Settings{ServerURL: "https://clawdbot.example.com"})

	_, err := svc.ProcessVoice(context.Background(), []byte("audio"), "audio/wav", "", nil)
	if !errors.Is(err, stt.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestStreamText(t *testing.T) {
	svc := companion.New(companion.Settings{})

	var chars []rune
	result, err := svc.StreamText(context.Background(), "ok", func(char rune, accumulated string) {
		chars = append(chars, char)
	}, typewriter.Options{CharDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if result != "ok" || string(chars) != "ok" {
		t.Errorf("unexpected stream output: %q / %q", result, string(chars))
	}
}
