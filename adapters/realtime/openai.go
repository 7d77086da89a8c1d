// Package realtime implements the repositories.RealtimeModel interface
// against the OpenAI Realtime API.
//
// One WebSocket connection carries a whole conversation: a session.update
// message configures voice, PCM16 audio formats and server-side turn
// detection, after which raw microphone chunks are appended to the input
// audio buffer as base64 and the server streams back tagged JSON events
// (audio deltas, transcript deltas, turn boundaries, errors).
package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shopeat/server/domain/repositories"
)

const (
	defaultBaseURL = "wss://api.openai.com/v1/realtime"
	defaultModel   = "gpt-4o-realtime-preview"
	defaultVoice   = "verse"

	// Realtime audio deltas can be large; match the vendor's limits.
	maxMessageSize = 50 * 1024 * 1024
)

// Compile-time checks against the domain interfaces.
var _ repositories.RealtimeModel = (*Client)(nil)
var _ repositories.RealtimeSession = (*Session)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the WebSocket base URL. Used by tests to point at a
// local server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel sets the default model for sessions opened by this client.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// Client opens realtime sessions against the OpenAI endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	logger  *zap.Logger
}

// NewClient creates a realtime client with the given API key.
func NewClient(apiKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		logger:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open dials the realtime endpoint and sends the one-time session
// configuration. The returned session accepts audio immediately.
func (c *Client) Open(ctx context.Context, cfg repositories.SessionConfig) (repositories.RealtimeSession, error) {
	model := cfg.Model
	if model == "" {
		model = c.model
	}

	header := http.Header{
		"Authorization": []string{"Bearer " + c.apiKey},
		"OpenAI-Beta":   []string{"realtime=v1"},
	}
	wsURL := fmt.Sprintf("%s?model=%s", c.baseURL, model)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("realtime dial: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	sessCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		conn:   conn,
		events: make(chan repositories.Event, 64),
		ctx:    sessCtx,
		cancel: cancel,
		logger: c.logger,
	}

	if err := s.sendSessionUpdate(cfg); err != nil {
		s.Close()
		return nil, fmt.Errorf("realtime session update: %w", err)
	}
	if cfg.Instructions != "" {
		if err := s.writeJSON(responseCreateMessage{
			Type:     "response.create",
			Response: &responseParams{Instructions: cfg.Instructions},
		}); err != nil {
			s.Close()
			return nil, fmt.Errorf("realtime opening response: %w", err)
		}
	}

	go s.receiveLoop()

	return s, nil
}

// Outgoing protocol messages.

type sessionUpdateMessage struct {
	Type    string        `json:"type"`
	Session sessionParams `json:"session"`
}

type sessionParams struct {
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription *transcriptionModel `json:"input_audio_transcription,omitempty"`
	TurnDetection           *turnDetection      `json:"turn_detection,omitempty"`
}

type transcriptionModel struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
	CreateResponse    bool    `json:"create_response"`
	InterruptResponse bool    `json:"interrupt_response"`
}

type appendAudioMessage struct {
	Type  string `json:"type"`
	Audio string `json:"audio"` // base64-encoded PCM16
}

type itemCreateMessage struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type    string             `json:"type"`
	Role    string             `json:"role,omitempty"`
	Content []conversationPart `json:"content,omitempty"`
}

type conversationPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type responseCreateMessage struct {
	Type     string          `json:"type"`
	Response *responseParams `json:"response,omitempty"`
}

type responseParams struct {
	Instructions string `json:"instructions,omitempty"`
}

// Incoming protocol messages. Attribute presence varies by tag, so every
// known field lives on one struct and the switch below picks what applies.
type serverEvent struct {
	Type       string             `json:"type"`
	Delta      string             `json:"delta,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	Error      *serverErrorDetail `json:"error,omitempty"`
}

type serverErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Session is one live connection to the realtime endpoint.
type Session struct {
	conn   *websocket.Conn
	events chan repositories.Event
	logger *zap.Logger

	// writeMu serializes writes; gorilla connections allow one writer.
	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (s *Session) sendSessionUpdate(cfg repositories.SessionConfig) error {
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	turn := cfg.Turn
	if turn == (repositories.TurnDetection{}) {
		turn = repositories.DefaultTurnDetection()
	}

	return s.writeJSON(sessionUpdateMessage{
		Type: "session.update",
		Session: sessionParams{
			Voice:             voice,
			InputAudioFormat:  "pcm16",
			OutputAudioFormat: "pcm16",
			// Transcribing the user's own speech drives keyword tagging.
			InputAudioTranscription: &transcriptionModel{Model: "whisper-1"},
			TurnDetection: &turnDetection{
				Type:              "server_vad",
				Threshold:         turn.Threshold,
				PrefixPaddingMs:   turn.PrefixPaddingMillis,
				SilenceDurationMs: turn.SilenceDurationMillis,
				CreateResponse:    turn.CreateResponse,
				InterruptResponse: turn.InterruptResponse,
			},
		},
	})
}

func (s *Session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// SendAudio appends one raw PCM16 chunk to the vendor's input audio buffer.
func (s *Session) SendAudio(chunk []byte) error {
	if s.isClosed() {
		return repositories.ErrSessionClosed
	}
	return s.writeJSON(appendAudioMessage{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(chunk),
	})
}

// SendText submits a user text message and triggers a model response.
func (s *Session) SendText(text string) error {
	if s.isClosed() {
		return repositories.ErrSessionClosed
	}
	if err := s.writeJSON(itemCreateMessage{
		Type: "conversation.item.create",
		Item: conversationItem{
			Type: "message",
			Role: "user",
			Content: []conversationPart{
				{Type: "input_text", Text: text},
			},
		},
	}); err != nil {
		return err
	}
	return s.writeJSON(responseCreateMessage{Type: "response.create"})
}

// Events returns the inbound event stream. The receive loop owns the channel
// and closes it when the transport closes or a fatal error arrives.
func (s *Session) Events() <-chan repositories.Event {
	return s.events
}

// Close releases the transport. Idempotent; pending queued audio is
// discarded, not flushed.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		s.cancel()
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// receiveLoop reads vendor events, maps them onto the domain's tagged
// variant and forwards them until the transport closes or a fatal error
// event is observed.
func (s *Session) receiveLoop() {
	defer close(s.events)
	defer s.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("Realtime transport closed", zap.Error(err))
			}
			return
		}

		var evt serverEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			s.logger.Warn("Undecodable realtime event", zap.Error(err))
			continue
		}

		out, ok := mapServerEvent(&evt)
		if !ok {
			continue
		}
		if !s.deliver(out) {
			return
		}
		if out.Type == repositories.EventError && out.Fatal {
			return
		}
	}
}

// deliver forwards one event, giving up when the session is cancelled.
func (s *Session) deliver(evt repositories.Event) bool {
	select {
	case s.events <- evt:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// mapServerEvent converts one vendor event into the domain variant. The
// bool result is false for events that carry nothing worth forwarding.
func mapServerEvent(evt *serverEvent) (repositories.Event, bool) {
	switch evt.Type {
	case "response.audio.delta":
		audio, err := base64.StdEncoding.DecodeString(evt.Delta)
		if err != nil || len(audio) == 0 {
			return repositories.Event{}, false
		}
		return repositories.Event{Type: repositories.EventAudioDelta, Audio: audio}, true

	case "response.audio.done":
		return repositories.Event{Type: repositories.EventAudioDone}, true

	case "response.audio_transcript.delta", "response.output_text.delta":
		if evt.Delta == "" {
			return repositories.Event{}, false
		}
		return repositories.Event{Type: repositories.EventTranscriptDelta, Text: evt.Delta}, true

	case "response.audio_transcript.done", "response.output_text.done":
		return repositories.Event{Type: repositories.EventTranscriptDone, Text: evt.Transcript}, true

	case "conversation.item.input_audio_transcription.completed":
		return repositories.Event{Type: repositories.EventInputTranscript, Text: evt.Transcript}, true

	case "input_audio_buffer.speech_started":
		return repositories.Event{Type: repositories.EventSpeechStarted}, true

	case "input_audio_buffer.speech_stopped":
		return repositories.Event{Type: repositories.EventSpeechStopped}, true

	case "error":
		msg := "unknown error"
		var fatal bool
		if evt.Error != nil {
			if evt.Error.Message != "" {
				msg = evt.Error.Message
			}
			// Request-level mistakes leave the session usable; server
			// failures and expiry do not.
			fatal = evt.Error.Type == "server_error" || evt.Error.Code == "session_expired"
		}
		return repositories.Event{
			Type:  repositories.EventError,
			Err:   fmt.Errorf("realtime: %s", msg),
			Fatal: fatal,
		}, true

	default:
		// The vendor protocol grows additively; unknown tags are ignored.
		return repositories.Event{Type: repositories.EventUnknown, RawType: evt.Type}, true
	}
}
