package realtime

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shopeat/server/domain/repositories"
)

// MockModel is a scripted stand-in for the vendor endpoint, used in tests
// and when no API key is configured. Text input produces a canned spoken
// reply; audio input is counted and acknowledged with turn boundaries once
// enough bytes arrive to look like speech.
type MockModel struct {
	logger *zap.Logger
}

// NewMockModel creates a mock realtime model.
func NewMockModel(logger *zap.Logger) *MockModel {
	return &MockModel{logger: logger}
}

var _ repositories.RealtimeModel = (*MockModel)(nil)

// Open returns a fresh scripted session. Sessions are independent; closing
// one never affects another.
func (m *MockModel) Open(_ context.Context, cfg repositories.SessionConfig) (repositories.RealtimeSession, error) {
	return &mockSession{
		events: make(chan repositories.Event, 64),
		voice:  cfg.Voice,
		logger: m.logger,
	}, nil
}

type mockSession struct {
	events chan repositories.Event
	voice  string
	logger *zap.Logger

	mu         sync.Mutex
	closed     bool
	audioBytes int
	spoke      bool
}

// utteranceBytes is how much audio the mock needs before it pretends the
// speaker said something.
const utteranceBytes = 16000

func (s *mockSession) SendAudio(chunk []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return repositories.ErrSessionClosed
	}
	s.audioBytes += len(chunk)
	trigger := !s.spoke && s.audioBytes >= utteranceBytes
	if trigger {
		s.spoke = true
	}
	s.mu.Unlock()

	if trigger {
		s.emit(repositories.Event{Type: repositories.EventSpeechStarted})
		s.emit(repositories.Event{Type: repositories.EventSpeechStopped})
		s.emit(repositories.Event{Type: repositories.EventInputTranscript, Text: "I need milk and bread"})
		s.reply("Milk and bread, added. Anything else?")
	}
	return nil
}

func (s *mockSession) SendText(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return repositories.ErrSessionClosed
	}
	s.mu.Unlock()

	s.reply("You said: " + text + ". What else do you need?")
	return nil
}

// reply streams a canned transcript word by word, then completion markers
// and a short burst of silence standing in for synthesized audio.
func (s *mockSession) reply(text string) {
	for _, word := range strings.SplitAfter(text, " ") {
		s.emit(repositories.Event{Type: repositories.EventTranscriptDelta, Text: word})
	}
	s.emit(repositories.Event{Type: repositories.EventTranscriptDone, Text: text})
	s.emit(repositories.Event{Type: repositories.EventAudioDelta, Audio: make([]byte, 3200)})
	s.emit(repositories.Event{Type: repositories.EventAudioDone})
}

func (s *mockSession) emit(evt repositories.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- evt:
	default:
		// Slow consumers lose scripted events rather than block the mock.
	}
}

func (s *mockSession) Events() <-chan repositories.Event {
	return s.events
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}
