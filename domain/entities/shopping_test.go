package entities

import (
	"testing"
)

func TestListAddMergesCaseInsensitive(t *testing.T) {
	list := NewList()

	item, created := list.Add("Milk", 1, "dairy", "")
	if !created {
		t.Error("expected first add to create a new entry")
	}
	if item.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", item.Quantity)
	}

	item, created = list.Add("milk", 2, "dairy", "")
	if created {
		t.Error("expected second add to merge into existing entry")
	}
	if item.Quantity != 3 {
		t.Errorf("expected quantity 3 after merge, got %d", item.Quantity)
	}
	// First insertion's casing wins.
	if item.Name != "Milk" {
		t.Errorf("expected name Milk, got %s", item.Name)
	}

	if list.Len() != 1 {
		t.Errorf("expected 1 distinct item, got %d", list.Len())
	}
}

func TestListAddSumsQuantitiesAcrossCasings(t *testing.T) {
	list := NewList()
	casings := []string{"bread", "Bread", "BREAD", "bReAd"}
	for _, name := range casings {
		list.Add(name, 2, "bakery", "")
	}

	items := list.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 8 {
		t.Errorf("expected summed quantity 8, got %d", items[0].Quantity)
	}
}

func TestListAddDefaults(t *testing.T) {
	list := NewList()
	item, _ := list.Add("soap", 0, "", "")
	if item.Quantity != 1 {
		t.Errorf("expected quantity default 1, got %d", item.Quantity)
	}
	if item.Category != DefaultCategory {
		t.Errorf("expected category %q, got %q", DefaultCategory, item.Category)
	}
}

func TestListRemoveIdempotent(t *testing.T) {
	list := NewList()
	list.Add("milk", 1, "dairy", "")
	list.Add("bread", 1, "bakery", "")

	list.Remove("MILK")
	if list.Len() != 1 {
		t.Fatalf("expected 1 item after remove, got %d", list.Len())
	}

	// Removing again, and removing an absent name, change nothing.
	list.Remove("milk")
	list.Remove("caviar")
	if list.Len() != 1 {
		t.Errorf("expected 1 item, got %d", list.Len())
	}
	if list.Items()[0].Name != "bread" {
		t.Errorf("expected remaining item bread, got %s", list.Items()[0].Name)
	}
}

func TestListClear(t *testing.T) {
	list := NewList()
	list.Add("milk", 1, "dairy", "")
	list.Add("rice", 1, "pantry", "")

	list.Clear()
	if list.Len() != 0 {
		t.Errorf("expected empty list, got %d items", list.Len())
	}
	if groups := list.ViewByCategory(); len(groups) != 0 {
		t.Errorf("expected empty grouping after clear, got %d groups", len(groups))
	}
}

func TestViewByCategoryOrdering(t *testing.T) {
	list := NewList()
	list.Add("milk", 1, "dairy", "")
	list.Add("bread", 1, "bakery", "")
	list.Add("cheese", 1, "dairy", "")
	list.Add("bagels", 1, "bakery", "")

	groups := list.ViewByCategory()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Category order follows first appearance.
	if groups[0].Category != "dairy" || groups[1].Category != "bakery" {
		t.Errorf("unexpected category order: %s, %s", groups[0].Category, groups[1].Category)
	}

	// Items within a category keep list order.
	if groups[0].Items[0].Name != "milk" || groups[0].Items[1].Name != "cheese" {
		t.Errorf("unexpected dairy order: %v", groups[0].Items)
	}
	if groups[1].Items[0].Name != "bread" || groups[1].Items[1].Name != "bagels" {
		t.Errorf("unexpected bakery order: %v", groups[1].Items)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	list := NewList()
	list.Add("milk", 1, "dairy", "")

	items := list.Items()
	items[0].Quantity = 99

	if list.Items()[0].Quantity != 1 {
		t.Error("mutating the returned slice must not affect the list")
	}
}
