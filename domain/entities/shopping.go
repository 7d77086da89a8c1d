package entities

import (
	"strings"
	"sync"
)

// DefaultCategory is used when a caller does not supply one.
const DefaultCategory = "general"

// Item is a single shopping list entry. Name is the identity key and is
// compared case-insensitively; the casing of the first insertion wins.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

// CategoryGroup is one category bucket of a grouped list view.
type CategoryGroup struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// List is an insertion-ordered shopping list with at most one item per
// case-insensitive name. It is safe for concurrent use; mutations are
// infrequent enough that a single mutex covers the whole list.
type List struct {
	mu    sync.Mutex
	items []Item
}

// NewList creates an empty shopping list.
func NewList() *List {
	return &List{}
}

// Add inserts an item or, when an item with the same case-insensitive name
// already exists, adds quantity to it. It returns the resulting item and
// whether the entry was newly created.
func (l *List) Add(name string, quantity int, category, notes string) (Item, bool) {
	if quantity <= 0 {
		quantity = 1
	}
	if category == "" {
		category = DefaultCategory
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := strings.ToLower(name)
	for i := range l.items {
		if strings.ToLower(l.items[i].Name) == key {
			l.items[i].Quantity += quantity
			if notes != "" {
				l.items[i].Notes = notes
			}
			return l.items[i], false
		}
	}

	item := Item{Name: name, Quantity: quantity, Category: category, Notes: notes}
	l.items = append(l.items, item)
	return item, true
}

// Remove deletes the item with the given case-insensitive name. Removing an
// absent name is a no-op.
func (l *List) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := strings.ToLower(name)
	kept := l.items[:0]
	for _, item := range l.items {
		if strings.ToLower(item.Name) != key {
			kept = append(kept, item)
		}
	}
	l.items = kept
}

// Clear empties the list.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items returns a copy of the list in insertion order.
func (l *List) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of distinct items.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// ViewByCategory groups items by category. Categories appear in first-seen
// order and items keep their list order within each group.
func (l *List) ViewByCategory() []CategoryGroup {
	l.mu.Lock()
	defer l.mu.Unlock()

	var groups []CategoryGroup
	index := make(map[string]int)
	for _, item := range l.items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, CategoryGroup{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
