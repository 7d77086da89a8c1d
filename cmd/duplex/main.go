// Command duplex is a terminal client for hands-free conversation: it
// streams microphone audio to the realtime endpoint while playing the
// assistant's spoken replies, printing both sides of the transcript.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shopeat/server/adapters/audio"
	"github.com/shopeat/server/adapters/realtime"
	"github.com/shopeat/server/domain/repositories"
	queuepkg "github.com/shopeat/server/internal/audio"
	"github.com/shopeat/server/internal/config"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if err := cfg.RequireOpenAI(); err != nil {
		logger.Fatal("Realtime access is required", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && ctx.Err() == nil {
		logger.Fatal("Session ended with error", zap.Error(err))
	}
	fmt.Println("\nbye")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client := realtime.NewClient(cfg.OpenAIAPIKey, logger,
		realtime.WithBaseURL(cfg.RealtimeURL),
		realtime.WithModel(cfg.Model),
	)
	session, err := client.Open(ctx, repositories.SessionConfig{
		Model:        cfg.Model,
		Voice:        cfg.Voice,
		SampleRate:   cfg.SampleRate,
		Instructions: "Greet the user briefly and offer to help with their shopping list.",
		Turn:         repositories.DefaultTurnDetection(),
	})
	if err != nil {
		return fmt.Errorf("open realtime session: %w", err)
	}
	defer session.Close()

	queue := queuepkg.NewFrameQueue(queuepkg.DefaultQueueFrames)
	defer queue.Close()

	capture, err := audio.NewCapture(cfg.SampleRate, cfg.ChunkBytes(), queue, logger)
	if err != nil {
		return fmt.Errorf("open microphone: %w", err)
	}
	defer capture.Close()

	playback, err := audio.NewPlayback(cfg.SampleRate, logger)
	if err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	defer playback.Close()

	if err := capture.Start(); err != nil {
		return fmt.Errorf("start microphone: %w", err)
	}

	fmt.Println("listening, speak when ready (ctrl-c to quit)")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sendLoop(ctx, session, queue, cfg) })
	g.Go(func() error { return receiveLoop(ctx, session, playback) })
	return g.Wait()
}

// sendLoop drains captured frames into the session. A short sleep after each
// chunk keeps uploads near real time so server VAD sees natural pacing.
func sendLoop(ctx context.Context, session repositories.RealtimeSession, queue *queuepkg.FrameQueue, cfg *config.Config) error {
	pace := time.Duration(cfg.AudioChunkMillis) * time.Millisecond * 6 / 10

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frame, ok := queue.Dequeue(200 * time.Millisecond)
		if !ok {
			continue
		}
		if err := session.SendAudio(frame); err != nil {
			return fmt.Errorf("send audio: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pace):
		}
	}
}

// receiveLoop plays synthesized audio and prints transcripts until the event
// stream closes. Speech onset flushes playback so the user can interrupt the
// assistant mid-sentence.
func receiveLoop(ctx context.Context, session repositories.RealtimeSession, playback *audio.Playback) error {
	var transcript strings.Builder
	events := session.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, open := <-events:
			if !open {
				return fmt.Errorf("realtime stream closed")
			}
			switch evt.Type {
			case repositories.EventAudioDelta:
				playback.Write(evt.Audio)
			case repositories.EventSpeechStarted:
				playback.Flush()
			case repositories.EventInputTranscript:
				fmt.Printf("you: %s\n", evt.Text)
			case repositories.EventTranscriptDelta:
				transcript.WriteString(evt.Text)
			case repositories.EventTranscriptDone:
				// Text-only turns carry no payload on the done marker.
				text := evt.Text
				if text == "" {
					text = transcript.String()
				}
				transcript.Reset()
				if text != "" {
					fmt.Printf("assistant: %s\n", text)
				}
			case repositories.EventError:
				if evt.Fatal {
					return fmt.Errorf("realtime error: %w", evt.Err)
				}
				fmt.Fprintf(os.Stderr, "warning: %v\n", evt.Err)
			}
		}
	}
}
