// Command companion exercises the chat-companion service layer from the
// terminal: health probe, text chat (with optional typewriter display),
// full voice turns from a recorded audio file, and session reset.
//
// Usage:
//
//	go run ./cmd/companion -health
//	go run ./cmd/companion -message "hola" -stream
//	go run ./cmd/companion -audio note.wav
//	go run ./cmd/companion -reset
//
// Configuration comes from flags, an optional YAML settings file
// (-settings), a .env file, and environment variables:
//
//	CLAWDBOT_SERVER_URL   - chat backend base URL
//	CLAWDBOT_AUTH_TOKEN   - optional bearer token
//	DEEPGRAM_API_KEY      - speech-to-text
//	ELEVENLABS_API_KEY    - text-to-speech (fallback provider)
//	CARTESIA_API_KEY      - text-to-speech (preferred provider)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clawdbot/go-companion/internal/config"
	"github.com/clawdbot/go-companion/internal/log"
	"github.com/clawdbot/go-companion/pkg/companion"
	"github.com/clawdbot/go-companion/pkg/typewriter"
	"github.com/clawdbot/go-companion/pkg/voice"
)

func main() {
	settingsPath := flag.String("settings", "", "Path to YAML settings file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	health := flag.Bool("health", false, "Probe the chat backend and exit")
	message := flag.String("message", "", "Send a chat message")
	stream := flag.Bool("stream", false, "Display the reply with typewriter pacing")
	audioPath := flag.String("audio", "", "Run a voice turn from an audio file")
	reset := flag.Bool("reset", false, "Reset the conversation session")
	session := flag.String("session", "", "Session id override")
	audioOut := flag.String("audio-out", "reply.mp3", "Where to write synthesized audio")
	flag.Parse()

	log.Init(*logLevel)

	settings, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	svc := companion.New(settings, companion.WithLogger(log.L()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *health:
		runHealth(ctx, svc)
	case *message != "":
		runChat(ctx, svc, *message, *session, *stream)
	case *audioPath != "":
		runVoice(ctx, svc, *audioPath, *session, *audioOut)
	case *reset:
		runReset(ctx, svc, *session)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runHealth(ctx context.Context, svc *companion.Service) {
	status, err := svc.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("backend unreachable: %v\n", err)
		os.Exit(1)
	}
	if !status.OK {
		fmt.Println("backend responded but is not healthy")
		os.Exit(1)
	}
	fmt.Printf("backend ok: %s\n", status.Clawdbot)
}

func runChat(ctx context.Context, svc *companion.Service, message, session string, stream bool) {
	resp, err := svc.Chat(ctx, message, session, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		os.Exit(1)
	}

	if stream {
		_, err = svc.StreamText(ctx, resp.Text, func(char rune, _ string) {
			fmt.Print(string(char))
		}, typewriter.DefaultOptions())
		fmt.Println()
		if err != nil {
			os.Exit(1)
		}
	} else {
		fmt.Println(resp.Text)
	}
	fmt.Printf("(session %s, %dms)\n", resp.SessionID, resp.LatencyMs)
}

func runVoice(ctx context.Context, svc *companion.Service, path, session, audioOut string) {
	turn, err := svc.ProcessVoiceFile(ctx, path, session, func(stage voice.Stage) {
		fmt.Printf("  [%s]\n", stage)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "voice turn failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("you said:  %s\n", turn.Transcription)
	fmt.Printf("assistant: %s\n", turn.Response)

	if turn.Audio == nil {
		fmt.Printf("no audio reply (%v)\n", turn.AudioErr)
		return
	}
	if err := os.WriteFile(audioOut, turn.Audio, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write audio: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("audio reply written to %s (%d bytes)\n", audioOut, len(turn.Audio))
}

func runReset(ctx context.Context, svc *companion.Service, session string) {
	if err := svc.ResetSession(ctx, session); err != nil {
		fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("session reset")
}
