// Package api wires the HTTP surface: health probes, shopping list REST
// endpoints and the WebSocket upgrade route.
package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shopeat/server/internal/config"
	"github.com/shopeat/server/internal/websocket"
	"github.com/shopeat/server/usecase"
)

// InitRoutes initializes all API routes.
func InitRoutes(e *echo.Echo, hub *websocket.Hub, assistant *usecase.Assistant, cfg *config.Config, logger *zap.Logger) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, RootResponse{
			Service: "shopeat-server",
			Message: "ShopEAT voice shopping assistant",
		})
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:            "ok",
			OpenAIConfigured:  cfg.OpenAIAPIKey != "",
			ActiveConnections: hub.ClientCount(),
			ShoppingItems:     assistant.List().Len(),
		})
	})

	e.GET("/api/categories", func(c echo.Context) error {
		return c.JSON(http.StatusOK, CategoriesResponse{Categories: config.Categories})
	})

	e.GET("/api/shopping-list", func(c echo.Context) error {
		return getShoppingList(c, assistant)
	})
	e.POST("/api/shopping-list", func(c echo.Context) error {
		return postShoppingAction(c, assistant, logger)
	})

	// WebSocket endpoint; a client without an ID gets a generated one.
	e.GET("/ws/:client_id", func(c echo.Context) error {
		clientID := c.Param("client_id")
		if clientID == "" {
			clientID = uuid.New().String()
		}
		return websocket.HandleWebSocket(hub, c, clientID, logger)
	})
}

func getShoppingList(c echo.Context, assistant *usecase.Assistant) error {
	res, err := assistant.Apply(usecase.ActionRequest{Action: usecase.ActionGetList})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ShoppingListResponse{
		Items:      res.Items,
		Grouped:    res.Groups,
		TotalItems: res.Total,
	})
}

func postShoppingAction(c echo.Context, assistant *usecase.Assistant, logger *zap.Logger) error {
	var req usecase.ActionRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind shopping action request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	// A bare item body means add; the action verb is optional on this route.
	if req.Action == "" {
		req.Action = usecase.ActionAddItem
	}

	res, err := assistant.Apply(req)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownAction) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unknown_action",
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, ActionResponse{
		Action:     res.Action,
		Item:       res.Item,
		TotalItems: res.Total,
	})
}
