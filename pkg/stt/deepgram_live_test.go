package stt_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clawdbot/go-companion/pkg/stt"
)

func TestNewLiveSessionRequiresAPIKey(t *testing.T) {
	_, err := stt.NewLiveSession(context.Background())
	if !errors.Is(err, stt.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestLiveSessionCallbacksSetWhileReceiving(t *testing.T) {
	upgrader := websocket.Upgrader{}

	// The server starts pushing results the moment the socket opens, so
	// callback registration overlaps message delivery.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for i := 0; i < 200; i++ {
			err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Results","channel":{"alternatives":[{"transcript":"hola","confidence":0.9}]},"is_final":true}`))
			if err != nil {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	session, err := stt.NewLiveSession(context.Background(),
		stt.WithAPIKey("test-key"),
		stt.WithBaseURL(wsURL),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer session.Close()

	received := make(chan string, 1)
	session.OnTranscript(func(text string, isFinal bool) {
		select {
		case received <- text:
		default:
		}
	})
	session.OnUtteranceEnd(func() {})

	select {
	case text := <-received:
		if text != "hola" {
			t.Errorf("unexpected transcript: %q", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transcript")
	}
}

func TestLiveSession(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotAudio []byte
	var audioMu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("expected Token auth, got %s", got)
		}
		q := r.URL.Query()
		if q.Get("encoding") != "linear16" {
			t.Errorf("expected encoding linear16, got %s", q.Get("encoding"))
		}
		if q.Get("sample_rate") != "16000" {
			t.Errorf("expected sample_rate 16000, got %s", q.Get("sample_rate"))
		}
		if q.Get("language") != "es" {
			t.Errorf("expected language es, got %s", q.Get("language"))
		}
		if q.Get("interim_results") != "true" {
			t.Errorf("expected interim_results true, got %s", q.Get("interim_results"))
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// First frame is audio; echo back an interim then a final result.
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			t.Errorf("expected binary audio frame, got type %d", msgType)
		}
		audioMu.Lock()
		gotAudio = data
		audioMu.Unlock()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Results","channel":{"alternatives":[{"transcript":"hola","confidence":0.8}]},"is_final":false}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Results","channel":{"alternatives":[{"transcript":"hola clawdbot","confidence":0.95}]},"is_final":true}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"UtteranceEnd"}`))

		// Drain until the client closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	session, err := stt.NewLiveSession(context.Background(),
		stt.WithAPIKey("test-key"),
		stt.WithBaseURL(wsURL),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer session.Close()

	type transcript struct {
		text    string
		isFinal bool
	}
	transcripts := make(chan transcript, 4)
	utteranceEnd := make(chan struct{}, 1)

	session.OnTranscript(func(text string, isFinal bool) {
		transcripts <- transcript{text, isFinal}
	})
	session.OnUtteranceEnd(func() {
		utteranceEnd <- struct{}{}
	})

	if err := session.SendAudio([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("send audio failed: %v", err)
	}

	waitFor := func(name string) transcript {
		select {
		case tr := <-transcripts:
			return tr
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", name)
			return transcript{}
		}
	}

	interim := waitFor("interim transcript")
	if interim.text != "hola" || interim.isFinal {
		t.Errorf("unexpected interim: %+v", interim)
	}

	final := waitFor("final transcript")
	if final.text != "hola clawdbot" || !final.isFinal {
		t.Errorf("unexpected final: %+v", final)
	}

	select {
	case <-utteranceEnd:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for utterance end")
	}

	audioMu.Lock()
	if len(gotAudio) != 3 {
		t.Errorf("expected 3 audio bytes at server, got %d", len(gotAudio))
	}
	audioMu.Unlock()

	if err := session.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if err := session.SendAudio([]byte{0x04}); !errors.Is(err, stt.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected after close, got %v", err)
	}
}
