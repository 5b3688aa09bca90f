package voice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clawdbot/go-companion/pkg/chat"
	"github.com/clawdbot/go-companion/pkg/tts"
)

// Orchestrator runs voice turns through its three stages in strict order:
// transcribing, thinking, speaking. No stage begins before the previous
// one resolves, and a failed stage stops the turn before the next.
type Orchestrator struct {
	transcriber Transcriber
	chatter     chat.Sender
	synthesizer Synthesizer
	logger      *slog.Logger
	metrics     *MetricsCollector
}

// NewOrchestrator wires the three stage capabilities together.
// synthesizer may be nil; turns then complete without audio.
func NewOrchestrator(transcriber Transcriber, chatter chat.Sender, synthesizer Synthesizer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		transcriber: transcriber,
		chatter:     chatter,
		synthesizer: synthesizer,
		logger:      logger.With("component", "voice.orchestrator"),
		metrics:     NewMetricsCollector(),
	}
}

// Metrics returns the per-turn latency collector.
func (o *Orchestrator) Metrics() *MetricsCollector {
	return o.metrics
}

// ProcessTurn runs one voice turn: transcribe the audio, send the
// transcript to chat, synthesize the reply.
//
// Failure policy: an STT or chat failure aborts the turn with a
// stage-prefixed error and later stages never run. A synthesis failure
// does not fail the turn: the transcript and reply are already valid,
// so the result carries Audio nil and the cause in AudioErr.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if o.transcriber == nil {
		return nil, ErrNoTranscriber
	}
	if o.chatter == nil {
		return nil, ErrNoChat
	}

	o.metrics.MarkTurnStart()
	notify(req.OnProgress, StageTranscribing)

	sttResult, err := o.transcriber.Transcribe(ctx, req.Audio, req.MIME)
	if err != nil {
		return nil, fmt.Errorf("stt failed: %w", err)
	}
	if sttResult.Text == "" {
		return nil, ErrNoSpeech
	}
	o.metrics.MarkTranscript()

	notify(req.OnProgress, StageThinking)

	chatResp, err := o.chatter.Send(ctx, chat.Request{
		Message:   sttResult.Text,
		SessionID: req.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}
	o.metrics.MarkResponse()

	notify(req.OnProgress, StageSpeaking)

	result := &TurnResult{
		Transcription: sttResult.Text,
		Response:      chatResp.Text,
		SessionID:     chatResp.SessionID,
		ChatLatencyMs: chatResp.LatencyMs,
	}

	if o.synthesizer == nil {
		result.AudioErr = tts.ErrProviderUnavailable
		o.metrics.MarkTurnDone()
		return result, nil
	}

	audio, err := o.synthesizer.Synthesize(ctx, chatResp.Text, func(stage tts.Stage) {
		notify(req.OnProgress, Stage(stage))
	})
	if err != nil {
		// Audio is a nice-to-have on top of a valid text reply.
		o.logger.Warn("synthesis failed, returning textless turn", "error", err)
		result.AudioErr = err
	} else {
		result.Audio = audio.Audio
		result.AudioFormat = audio.Format
	}

	o.metrics.MarkTurnDone()
	return result, nil
}

func notify(fn ProgressFunc, stage Stage) {
	if fn != nil {
		fn(stage)
	}
}
