// Package usecase orchestrates shopping-list behavior: keyword tagging of
// transcripts and explicit list commands from the front-end facade.
package usecase

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopeat/server/domain/entities"
)

// ErrUnknownAction reports an unrecognized shopping_action verb. The facade
// converts it into an error response and keeps the connection open.
var ErrUnknownAction = errors.New("unknown shopping action")

// Shopping action verbs accepted from the facade.
const (
	ActionAddItem    = "add_item"
	ActionRemoveItem = "remove_item"
	ActionGetList    = "get_list"
	ActionClearList  = "clear_list"
)

// ActionRequest is one explicit shopping command from a client.
type ActionRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ActionResult describes the effect of a shopping action.
type ActionResult struct {
	// Action echoes what happened, e.g. "item_added", "list_cleared".
	Action string
	// Item is set for single-item mutations.
	Item *entities.Item
	// Items is set for list reads.
	Items []entities.Item
	// Groups is the category view for list reads.
	Groups []entities.CategoryGroup
	// Total is the distinct item count after the action.
	Total int
}

// Assistant owns the shopping list and applies both voice-derived and
// explicit mutations. A single Assistant serves all clients; the list's own
// lock covers the low write rate.
type Assistant struct {
	list   *entities.List
	logger *zap.Logger
}

// NewAssistant creates an assistant around the given list.
func NewAssistant(list *entities.List, logger *zap.Logger) *Assistant {
	return &Assistant{list: list, logger: logger}
}

// List exposes the underlying shopping list for read endpoints.
func (a *Assistant) List() *entities.List {
	return a.list
}

// TagTranscript keyword-scans transcribed speech and adds every detected
// product to the list. It returns the resulting items in detection order.
func (a *Assistant) TagTranscript(text string) []entities.Item {
	detected := DetectItems(text)
	if len(detected) == 0 {
		return nil
	}

	items := make([]entities.Item, 0, len(detected))
	for _, d := range detected {
		item, created := a.list.Add(d.Name, d.Quantity, d.Category, "")
		items = append(items, item)
		a.logger.Info("Tagged shopping item from transcript",
			zap.String("name", item.Name),
			zap.Int("quantity", item.Quantity),
			zap.Bool("created", created))
	}
	return items
}

// Apply executes one explicit shopping action.
func (a *Assistant) Apply(req ActionRequest) (ActionResult, error) {
	switch req.Action {
	case ActionAddItem:
		if req.Name == "" {
			return ActionResult{}, fmt.Errorf("add_item requires a name")
		}
		item, _ := a.list.Add(req.Name, req.Quantity, req.Category, req.Notes)
		return ActionResult{Action: "item_added", Item: &item, Total: a.list.Len()}, nil

	case ActionRemoveItem:
		if req.Name == "" {
			return ActionResult{}, fmt.Errorf("remove_item requires a name")
		}
		a.list.Remove(req.Name)
		return ActionResult{Action: "item_removed", Total: a.list.Len()}, nil

	case ActionGetList:
		return ActionResult{
			Action: "list",
			Items:  a.list.Items(),
			Groups: a.list.ViewByCategory(),
			Total:  a.list.Len(),
		}, nil

	case ActionClearList:
		a.list.Clear()
		return ActionResult{Action: "list_cleared", Total: 0}, nil

	default:
		return ActionResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}
