package websocket

import (
	"encoding/json"
	"testing"

	"github.com/shopeat/server/domain/entities"
	"github.com/shopeat/server/usecase"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType MessageType
		wantErr  bool
	}{
		{
			name:     "voice input",
			raw:      `{"type":"voice_input","text":"hello"}`,
			wantType: MessageTypeVoiceInput,
		},
		{
			name:     "shopping action",
			raw:      `{"type":"shopping_action","action":"get_list"}`,
			wantType: MessageTypeShoppingAction,
		},
		{
			name:     "unrecognized type still parses",
			raw:      `{"type":"ping"}`,
			wantType: MessageType("ping"),
		},
		{
			name:    "missing type",
			raw:     `{"text":"hello"}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			raw:     `{"type":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClientMessage([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClientMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.wantType {
				t.Errorf("ParseClientMessage() = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestResultMessage(t *testing.T) {
	item := &entities.Item{Name: "milk", Quantity: 2, Category: "dairy"}

	t.Run("mutation becomes shopping_update", func(t *testing.T) {
		msg := resultMessage(usecase.ActionResult{Action: "item_added", Item: item, Total: 1})
		update, ok := msg.(ShoppingUpdateMessage)
		if !ok {
			t.Fatalf("resultMessage() = %T, want ShoppingUpdateMessage", msg)
		}
		if update.Type != MessageTypeShoppingUpdate {
			t.Errorf("type = %q, want %q", update.Type, MessageTypeShoppingUpdate)
		}
		if update.Action != "item_added" || update.TotalItems != 1 {
			t.Errorf("unexpected update payload: %+v", update)
		}
	})

	t.Run("read becomes shopping_list", func(t *testing.T) {
		msg := resultMessage(usecase.ActionResult{
			Action: "list",
			Items:  []entities.Item{*item},
			Groups: []entities.CategoryGroup{{Category: "dairy", Items: []entities.Item{*item}}},
			Total:  1,
		})
		list, ok := msg.(ShoppingListMessage)
		if !ok {
			t.Fatalf("resultMessage() = %T, want ShoppingListMessage", msg)
		}
		if list.Type != MessageTypeShoppingList || list.TotalItems != 1 || len(list.Items) != 1 {
			t.Errorf("unexpected list payload: %+v", list)
		}
	})
}

func TestEchoMessageRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"ping","nonce":42}`)
	data, err := json.Marshal(newEchoMessage(raw))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var echoed struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &echoed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if echoed.Type != MessageTypeEcho {
		t.Errorf("type = %q, want %q", echoed.Type, MessageTypeEcho)
	}
	if string(echoed.Data) != string(raw) {
		t.Errorf("data = %s, want %s", echoed.Data, raw)
	}
}
