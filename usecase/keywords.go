package usecase

import "strings"

// DetectedItem is one keyword hit mapped to a shopping entry.
type DetectedItem struct {
	Name     string
	Quantity int
	Category string
}

// keywordEntry maps spoken variants onto a canonical item. Matching is
// substring containment over lowercased text, so singular forms also cover
// their plurals; partial-word hits are accepted as-is. This is a best-effort
// heuristic, not a parser.
type keywordEntry struct {
	variants []string
	name     string
	category string
}

// vocabulary is scanned in order, so detections for one utterance come out
// grouped by category: dairy, produce, meat, bakery, pantry.
var vocabulary = []keywordEntry{
	// Dairy
	{[]string{"milk"}, "milk", "dairy"},
	{[]string{"cheese"}, "cheese", "dairy"},
	{[]string{"butter"}, "butter", "dairy"},
	{[]string{"yogurt"}, "yogurt", "dairy"},
	{[]string{"cream"}, "cream", "dairy"},

	// Produce
	{[]string{"banana"}, "bananas", "produce"},
	{[]string{"apple"}, "apples", "produce"},
	{[]string{"tomato"}, "tomatoes", "produce"},
	{[]string{"lettuce"}, "lettuce", "produce"},
	{[]string{"carrot"}, "carrots", "produce"},

	// Meat
	{[]string{"chicken"}, "chicken", "meat"},
	{[]string{"beef"}, "beef", "meat"},
	{[]string{"pork"}, "pork", "meat"},
	{[]string{"fish"}, "fish", "meat"},

	// Bakery
	{[]string{"bread"}, "bread", "bakery"},
	{[]string{"bagel"}, "bagels", "bakery"},
	{[]string{"croissant"}, "croissants", "bakery"},

	// Pantry
	{[]string{"rice"}, "rice", "pantry"},
	{[]string{"pasta"}, "pasta", "pantry"},
	{[]string{"oil"}, "cooking oil", "pantry"},
	{[]string{"sauce"}, "pasta sauce", "pantry"},
}

// DetectItems scans text for known product names and returns one detection
// per matched vocabulary entry, quantity 1 each.
func DetectItems(text string) []DetectedItem {
	lower := strings.ToLower(text)

	var detected []DetectedItem
	for _, entry := range vocabulary {
		for _, variant := range entry.variants {
			if strings.Contains(lower, variant) {
				detected = append(detected, DetectedItem{
					Name:     entry.name,
					Quantity: 1,
					Category: entry.category,
				})
				break
			}
		}
	}
	return detected
}
