package repositories

import (
	"context"
	"errors"
)

// ErrSessionClosed is returned by send operations after the underlying
// transport has been released.
var ErrSessionClosed = errors.New("realtime session closed")

// TurnDetection configures the vendor's server-side voice activity detection.
type TurnDetection struct {
	// Threshold is the energy level above which audio counts as speech.
	Threshold float64
	// PrefixPaddingMillis is leading audio kept before detected speech onset.
	PrefixPaddingMillis int
	// SilenceDurationMillis is trailing silence before an utterance is
	// treated as complete.
	SilenceDurationMillis int
	// CreateResponse makes the model start a response when speech ends.
	CreateResponse bool
	// InterruptResponse lets new speech cut off a response being spoken.
	InterruptResponse bool
}

// SessionConfig declares voice, audio encoding and turn detection for one
// realtime session. Zero values fall back to the adapter's defaults.
type SessionConfig struct {
	Model        string
	Voice        string
	Instructions string
	SampleRate   int
	Turn         TurnDetection
}

// DefaultTurnDetection matches the reference relay's server VAD settings.
func DefaultTurnDetection() TurnDetection {
	return TurnDetection{
		Threshold:             0.5,
		PrefixPaddingMillis:   300,
		SilenceDurationMillis: 200,
		CreateResponse:        true,
		InterruptResponse:     true,
	}
}

// EventType tags an inbound realtime event.
type EventType string

const (
	// EventAudioDelta carries an incremental chunk of synthesized PCM audio.
	EventAudioDelta EventType = "audio_delta"
	// EventAudioDone marks the end of one spoken segment.
	EventAudioDone EventType = "audio_done"
	// EventTranscriptDelta carries an incremental fragment of the model's
	// spoken-response transcript.
	EventTranscriptDelta EventType = "transcript_delta"
	// EventTranscriptDone marks the response transcript as complete and
	// carries the full text.
	EventTranscriptDone EventType = "transcript_done"
	// EventInputTranscript carries the completed transcription of the
	// user's own speech.
	EventInputTranscript EventType = "input_transcript"
	// EventSpeechStarted and EventSpeechStopped are server VAD turn
	// boundaries.
	EventSpeechStarted EventType = "speech_started"
	EventSpeechStopped EventType = "speech_stopped"
	// EventError carries a vendor error. Fatal errors terminate the event
	// stream.
	EventError EventType = "error"
	// EventUnknown is any tag this client does not recognize. The vendor
	// protocol grows additively, so unknown tags are surfaced and ignored,
	// never fatal.
	EventUnknown EventType = "unknown"
)

// Event is the tagged variant received from the realtime endpoint. Only the
// fields relevant to its Type are populated.
type Event struct {
	Type EventType
	// Audio is decoded PCM16 for EventAudioDelta.
	Audio []byte
	// Text is the delta or completed transcript for transcript events.
	Text string
	// Err describes an EventError.
	Err error
	// Fatal reports whether an EventError ends the session.
	Fatal bool
	// RawType preserves the vendor tag for EventUnknown.
	RawType string
}

// RealtimeSession is one live bidirectional connection to the vendor's
// realtime endpoint. Many conversational turns share one session; the server
// VAD segments utterances so callers never reconnect per turn.
type RealtimeSession interface {
	// SendAudio enqueues one raw PCM16 chunk for the input audio buffer.
	SendAudio(chunk []byte) error
	// SendText submits a user text message and asks the model to respond.
	SendText(text string) error
	// Events returns the inbound event stream. The channel is closed when
	// the transport closes or a fatal error event is observed. The stream
	// can only be restarted by opening a new session.
	Events() <-chan Event
	// Close releases the transport and all per-session state. Idempotent.
	Close() error
}

// RealtimeModel opens realtime sessions against a conversational AI vendor.
type RealtimeModel interface {
	Open(ctx context.Context, cfg SessionConfig) (RealtimeSession, error)
}
