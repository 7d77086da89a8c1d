// Package websocket is the per-client facade channel: it upgrades front-end
// connections, relays voice input to the vendor realtime session and streams
// responses, shopping updates and errors back as type-tagged JSON.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shopeat/server/domain/repositories"
	"github.com/shopeat/server/internal/config"
	"github.com/shopeat/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; covers base64 audio chunks.
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The front-end is served from a different origin in development.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients and the per-client session map.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	model     repositories.RealtimeModel
	assistant *usecase.Assistant
	cfg       *config.Config

	logger *zap.Logger
}

// NewHub creates a WebSocket hub relaying between front-end clients and the
// realtime model.
func NewHub(model repositories.RealtimeModel, assistant *usecase.Assistant, cfg *config.Config, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		model:      model,
		assistant:  assistant,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// A reconnecting client ID displaces its old connection.
			if old, ok := h.clients[client.clientID]; ok {
				old.closeSession()
				old.closeSend()
			}
			h.clients[client.clientID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.clientID]; ok && current == client {
				delete(h.clients, client.clientID)
				client.closeSend()
			}
			h.mu.Unlock()
			client.closeSession()
			h.logger.Info("Client unregistered", zap.String("clientID", client.clientID))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and starts the client pumps.
func HandleWebSocket(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		clientID: clientID,
		logger:   logger.With(zap.String("clientID", clientID)),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	return nil
}
