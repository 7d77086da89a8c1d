package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/shopeat/server/domain/entities"
	"github.com/shopeat/server/usecase"
)

// MessageType discriminates facade messages in both directions.
type MessageType string

// Inbound message types.
const (
	MessageTypeVoiceInput     MessageType = "voice_input"
	MessageTypeShoppingAction MessageType = "shopping_action"
)

// Outbound message types.
const (
	MessageTypeVoiceResponse  MessageType = "voice_response"
	MessageTypeShoppingUpdate MessageType = "shopping_update"
	MessageTypeShoppingList   MessageType = "shopping_list"
	MessageTypeError          MessageType = "error"
	MessageTypeEcho           MessageType = "echo"
)

// BaseMessage carries the type discriminator shared by all facade messages.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// VoiceInputMessage relays user speech or text to the realtime session.
// AudioData is base64-encoded mono PCM16; Text bypasses the audio path.
type VoiceInputMessage struct {
	BaseMessage
	AudioData string `json:"audio_data,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ShoppingActionMessage is an explicit list command.
type ShoppingActionMessage struct {
	BaseMessage
	Action string                 `json:"action"`
	Item   *usecase.ActionRequest `json:"item,omitempty"`
}

// VoiceResponseMessage streams the assistant's reply back to the client.
// Fields arrive in any combination: audio deltas come incrementally,
// TranscribedText reports what the user was heard to say, AIResponse is the
// completed reply text and Done marks the end of one spoken segment.
type VoiceResponseMessage struct {
	BaseMessage
	AudioData       string `json:"audio_data,omitempty"`
	TranscribedText string `json:"transcribed_text,omitempty"`
	AIResponse      string `json:"ai_response,omitempty"`
	Done            bool   `json:"done,omitempty"`
}

// ShoppingUpdateMessage reports one list mutation.
type ShoppingUpdateMessage struct {
	BaseMessage
	Action     string         `json:"action"`
	Item       *entities.Item `json:"item,omitempty"`
	TotalItems int            `json:"total_items"`
}

// ShoppingListMessage is a full list read.
type ShoppingListMessage struct {
	BaseMessage
	Items      []entities.Item          `json:"items"`
	Grouped    []entities.CategoryGroup `json:"grouped,omitempty"`
	TotalItems int                      `json:"total_items"`
}

// ErrorMessage reports a per-request failure without dropping the
// connection.
type ErrorMessage struct {
	BaseMessage
	Message string `json:"message"`
}

// EchoMessage wraps an unrecognized inbound message back to its sender.
type EchoMessage struct {
	BaseMessage
	Data json.RawMessage `json:"data"`
}

// ParseClientMessage decodes the type discriminator of one inbound message.
// Unrecognized types parse successfully; the caller echoes them back.
func ParseClientMessage(data []byte) (MessageType, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return "", fmt.Errorf("invalid JSON message: %w", err)
	}
	if base.Type == "" {
		return "", fmt.Errorf("message missing type field")
	}
	return base.Type, nil
}

func newVoiceResponse() VoiceResponseMessage {
	return VoiceResponseMessage{BaseMessage: BaseMessage{Type: MessageTypeVoiceResponse}}
}

func newErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeError}, Message: msg}
}

func newEchoMessage(data []byte) EchoMessage {
	return EchoMessage{BaseMessage: BaseMessage{Type: MessageTypeEcho}, Data: json.RawMessage(data)}
}

// resultMessage converts an ActionResult into the matching outbound message.
func resultMessage(res usecase.ActionResult) any {
	if res.Action == "list" {
		return ShoppingListMessage{
			BaseMessage: BaseMessage{Type: MessageTypeShoppingList},
			Items:       res.Items,
			Grouped:     res.Groups,
			TotalItems:  res.Total,
		}
	}
	return ShoppingUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeShoppingUpdate},
		Action:      res.Action,
		Item:        res.Item,
		TotalItems:  res.Total,
	}
}
