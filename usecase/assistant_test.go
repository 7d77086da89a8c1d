package usecase

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/shopeat/server/domain/entities"
)

func newTestAssistant() *Assistant {
	return NewAssistant(entities.NewList(), zap.NewNop())
}

func TestDetectItemsMilkAndBread(t *testing.T) {
	detected := DetectItems("I need milk and bread")
	if len(detected) != 2 {
		t.Fatalf("expected 2 detections, got %d: %v", len(detected), detected)
	}
	if detected[0].Name != "milk" || detected[0].Category != "dairy" || detected[0].Quantity != 1 {
		t.Errorf("unexpected first detection: %+v", detected[0])
	}
	if detected[1].Name != "bread" || detected[1].Category != "bakery" || detected[1].Quantity != 1 {
		t.Errorf("unexpected second detection: %+v", detected[1])
	}
}

func TestDetectItemsPluralAndCase(t *testing.T) {
	detected := DetectItems("Two Bananas and some APPLES please")
	if len(detected) != 2 {
		t.Fatalf("expected 2 detections, got %d: %v", len(detected), detected)
	}
	if detected[0].Name != "bananas" || detected[1].Name != "apples" {
		t.Errorf("unexpected detections: %v", detected)
	}
}

func TestDetectItemsSynonymMapping(t *testing.T) {
	detected := DetectItems("olive oil and tomato sauce")
	names := map[string]bool{}
	for _, d := range detected {
		names[d.Name] = true
	}
	// Substring matching maps "oil" and "sauce" onto the pantry staples.
	if !names["cooking oil"] || !names["pasta sauce"] {
		t.Errorf("expected pantry synonyms, got %v", detected)
	}
}

func TestDetectItemsNoMatch(t *testing.T) {
	if detected := DetectItems("nothing edible here"); detected != nil {
		t.Errorf("expected no detections, got %v", detected)
	}
}

func TestTagTranscriptAddsToList(t *testing.T) {
	a := newTestAssistant()

	items := a.TagTranscript("I need milk and bread")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	stored := a.List().Items()
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored items, got %d", len(stored))
	}
	if stored[0].Name != "milk" || stored[1].Name != "bread" {
		t.Errorf("unexpected store order: %v", stored)
	}

	// Saying it again accumulates quantity instead of duplicating.
	a.TagTranscript("more milk")
	stored = a.List().Items()
	if len(stored) != 2 {
		t.Fatalf("expected 2 distinct items, got %d", len(stored))
	}
	if stored[0].Quantity != 2 {
		t.Errorf("expected milk quantity 2, got %d", stored[0].Quantity)
	}
}

func TestApplyAddItem(t *testing.T) {
	a := newTestAssistant()

	res, err := a.Apply(ActionRequest{Action: ActionAddItem, Name: "Milk", Quantity: 2, Category: "dairy"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != "item_added" || res.Item == nil || res.Item.Quantity != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Total != 1 {
		t.Errorf("expected total 1, got %d", res.Total)
	}
}

func TestApplyAddItemRequiresName(t *testing.T) {
	a := newTestAssistant()
	if _, err := a.Apply(ActionRequest{Action: ActionAddItem}); err == nil {
		t.Error("expected error for add_item without name")
	}
}

func TestApplyRemoveItemIdempotent(t *testing.T) {
	a := newTestAssistant()
	a.Apply(ActionRequest{Action: ActionAddItem, Name: "milk"})

	res, err := a.Apply(ActionRequest{Action: ActionRemoveItem, Name: "MILK"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Total != 0 {
		t.Errorf("expected empty list, got %d", res.Total)
	}

	// Removing again is a quiet no-op.
	if _, err := a.Apply(ActionRequest{Action: ActionRemoveItem, Name: "milk"}); err != nil {
		t.Errorf("expected idempotent remove, got %v", err)
	}
}

func TestApplyGetList(t *testing.T) {
	a := newTestAssistant()
	a.Apply(ActionRequest{Action: ActionAddItem, Name: "milk", Category: "dairy"})
	a.Apply(ActionRequest{Action: ActionAddItem, Name: "bread", Category: "bakery"})

	res, err := a.Apply(ActionRequest{Action: ActionGetList})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(res.Items) != 2 || len(res.Groups) != 2 {
		t.Errorf("unexpected list view: %+v", res)
	}
}

func TestApplyClearList(t *testing.T) {
	a := newTestAssistant()
	a.Apply(ActionRequest{Action: ActionAddItem, Name: "milk"})

	res, err := a.Apply(ActionRequest{Action: ActionClearList})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Action != "list_cleared" || res.Total != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if a.List().Len() != 0 {
		t.Error("expected list to be empty")
	}
}

func TestApplyUnknownAction(t *testing.T) {
	a := newTestAssistant()
	_, err := a.Apply(ActionRequest{Action: "teleport_groceries"})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}
