package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shopeat/server/domain/repositories"
	"github.com/shopeat/server/usecase"
)

// Client is a middleman between a front-end WebSocket connection and the hub.
// Each client owns at most one live realtime session, opened lazily on the
// first voice_input and released when the connection goes away.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	clientID string
	logger   *zap.Logger

	// sendMu guards send against close: the dispatch loop may still be
	// draining buffered realtime events when the hub tears the client down.
	sendMu     sync.Mutex
	sendClosed bool

	sessionMu sync.Mutex
	session   repositories.RealtimeSession
}

// readPump pumps messages from the WebSocket connection to the handlers.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Unexpected close", zap.Error(err))
			}
			return
		}
		c.handleMessage(data)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendJSON marshals v and queues it for delivery. Writes after teardown are
// dropped; slow clients that fill the buffer are unregistered rather than
// blocking the dispatch loop.
func (c *Client) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Marshal outbound message", zap.Error(err))
		return
	}

	c.sendMu.Lock()
	if c.sendClosed {
		c.sendMu.Unlock()
		return
	}
	select {
	case c.send <- data:
		c.sendMu.Unlock()
		return
	default:
	}
	c.sendMu.Unlock()

	// Unregistering can block on the hub loop, which may itself be waiting
	// on sendMu to close this client; the lock must be released first.
	c.logger.Warn("Send buffer full, dropping client")
	c.hub.unregister <- c
}

// closeSend stops further outbound writes and closes the channel so the
// write pump exits. Idempotent; late dispatch writes become no-ops instead
// of sends on a closed channel.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (c *Client) handleMessage(data []byte) {
	msgType, err := ParseClientMessage(data)
	if err != nil {
		c.sendJSON(newErrorMessage("invalid JSON message"))
		return
	}

	switch msgType {
	case MessageTypeVoiceInput:
		var msg VoiceInputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(newErrorMessage("invalid voice_input message"))
			return
		}
		c.handleVoiceInput(msg)

	case MessageTypeShoppingAction:
		var msg ShoppingActionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(newErrorMessage("invalid shopping_action message"))
			return
		}
		c.handleShoppingAction(msg)

	default:
		// Unrecognized types echo back so front-end experiments are visible.
		c.sendJSON(newEchoMessage(data))
	}
}

// ensureSession returns the client's live realtime session, opening one on
// first use.
func (c *Client) ensureSession() (repositories.RealtimeSession, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	cfg := repositories.SessionConfig{
		Model:      c.hub.cfg.Model,
		Voice:      c.hub.cfg.Voice,
		SampleRate: c.hub.cfg.SampleRate,
		Turn:       repositories.DefaultTurnDetection(),
	}
	session, err := c.hub.model.Open(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	c.session = session
	go c.dispatchLoop(session)
	return session, nil
}

func (c *Client) closeSession() {
	c.sessionMu.Lock()
	session := c.session
	c.session = nil
	c.sessionMu.Unlock()
	if session != nil {
		session.Close()
	}
}

// releaseSession clears the stored session if it is still the given one, so
// the next voice_input opens a fresh transport.
func (c *Client) releaseSession(session repositories.RealtimeSession) {
	c.sessionMu.Lock()
	if c.session == session {
		c.session = nil
	}
	c.sessionMu.Unlock()
	session.Close()
}

func (c *Client) handleVoiceInput(msg VoiceInputMessage) {
	if msg.AudioData == "" && msg.Text == "" {
		c.sendJSON(newErrorMessage("voice_input requires audio_data or text"))
		return
	}

	session, err := c.ensureSession()
	if err != nil {
		c.logger.Error("Open realtime session", zap.Error(err))
		c.sendJSON(newErrorMessage("voice service unavailable"))
		return
	}

	if msg.Text != "" {
		if err := session.SendText(msg.Text); err != nil {
			c.releaseSession(session)
			c.sendJSON(newErrorMessage("voice service unavailable"))
		}
		return
	}

	audio, err := base64.StdEncoding.DecodeString(msg.AudioData)
	if err != nil {
		c.sendJSON(newErrorMessage("audio_data is not valid base64"))
		return
	}
	if err := session.SendAudio(audio); err != nil {
		c.releaseSession(session)
		c.sendJSON(newErrorMessage("voice service unavailable"))
	}
}

// dispatchLoop drains one realtime session's event stream, translating vendor
// events into facade messages until the stream closes.
func (c *Client) dispatchLoop(session repositories.RealtimeSession) {
	var transcript strings.Builder
	fatalReported := false

	for evt := range session.Events() {
		switch evt.Type {
		case repositories.EventAudioDelta:
			out := newVoiceResponse()
			out.AudioData = base64.StdEncoding.EncodeToString(evt.Audio)
			c.sendJSON(out)

		case repositories.EventAudioDone:
			out := newVoiceResponse()
			out.Done = true
			c.sendJSON(out)

		case repositories.EventTranscriptDelta:
			transcript.WriteString(evt.Text)

		case repositories.EventTranscriptDone:
			text := evt.Text
			if text == "" {
				text = transcript.String()
			}
			transcript.Reset()
			if text != "" {
				out := newVoiceResponse()
				out.AIResponse = text
				c.sendJSON(out)
			}

		case repositories.EventInputTranscript:
			c.handleInputTranscript(evt.Text)

		case repositories.EventSpeechStarted, repositories.EventSpeechStopped, repositories.EventUnknown:
			// Turn markers and unrecognized vendor tags carry no facade payload.

		case repositories.EventError:
			c.logger.Warn("Realtime error event", zap.Error(evt.Err), zap.Bool("fatal", evt.Fatal))
			c.sendJSON(newErrorMessage(evt.Err.Error()))
			if evt.Fatal {
				fatalReported = true
			}
		}
	}

	c.releaseSession(session)

	// A dropped vendor transport must be visible to the client. Fatal errors
	// were already reported above.
	if !fatalReported {
		c.sendJSON(newErrorMessage("voice session ended, send voice_input to start a new one"))
	}
}

// handleInputTranscript forwards what the user said and tags any shopping
// keywords into list updates.
func (c *Client) handleInputTranscript(text string) {
	if strings.TrimSpace(text) == "" {
		c.sendJSON(newErrorMessage("could not understand the audio"))
		return
	}

	out := newVoiceResponse()
	out.TranscribedText = text
	c.sendJSON(out)

	added := c.hub.assistant.TagTranscript(text)
	for i := range added {
		item := added[i]
		c.sendJSON(ShoppingUpdateMessage{
			BaseMessage: BaseMessage{Type: MessageTypeShoppingUpdate},
			Action:      "item_added",
			Item:        &item,
			TotalItems:  c.hub.assistant.List().Len(),
		})
	}
}

func (c *Client) handleShoppingAction(msg ShoppingActionMessage) {
	req := usecase.ActionRequest{Action: msg.Action}
	if msg.Item != nil {
		req = *msg.Item
		req.Action = msg.Action
	}

	res, err := c.hub.assistant.Apply(req)
	if err != nil {
		if !errors.Is(err, usecase.ErrUnknownAction) {
			c.logger.Warn("Shopping action failed", zap.Error(err))
		}
		c.sendJSON(newErrorMessage(err.Error()))
		return
	}
	c.sendJSON(resultMessage(res))
}
