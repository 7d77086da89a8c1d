package api

import "github.com/shopeat/server/domain/entities"

// RootResponse identifies the service.
type RootResponse struct {
	Service string `json:"service"`
	Message string `json:"message"`
}

// HealthResponse reports liveness plus a few operational gauges.
type HealthResponse struct {
	Status            string `json:"status"`
	OpenAIConfigured  bool   `json:"openai_configured"`
	ActiveConnections int    `json:"active_connections"`
	ShoppingItems     int    `json:"shopping_items"`
}

// ShoppingListResponse is the full list, flat and grouped by category.
type ShoppingListResponse struct {
	Items      []entities.Item          `json:"items"`
	Grouped    []entities.CategoryGroup `json:"grouped"`
	TotalItems int                      `json:"total_items"`
}

// ActionResponse reports the outcome of one list mutation.
type ActionResponse struct {
	Action     string         `json:"action"`
	Item       *entities.Item `json:"item,omitempty"`
	TotalItems int            `json:"total_items"`
}

// CategoriesResponse lists the fixed shopping categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ErrorResponse is the REST error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
