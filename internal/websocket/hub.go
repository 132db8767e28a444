package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jaybpaid/DFS-APP-sub002/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (should be restricted in production)
	},
}

// Client represents a WebSocket client subscribed to one slate's progress
type Client struct {
	SlateID string
	Conn    *websocket.Conn
	Send    chan []byte
	Hub     *Hub
}

// Hub maintains active WebSocket connections and broadcasts progress updates
type Hub struct {
	clients      map[*Client]bool
	slateClients map[string][]*Client
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *Client
	logger       *logrus.Logger
	mutex        sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		slateClients: make(map[string][]*Client),
		broadcast:    make(chan []byte, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		logger:       logger,
	}
}

// Run starts the hub and handles client registration/unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.slateClients[client.SlateID] = append(h.slateClients[client.SlateID], client)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"slate_id":      client.SlateID,
				"total_clients": len(h.clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.evict(client)

			h.logger.WithFields(logrus.Fields{
				"slate_id":      client.SlateID,
				"total_clients": h.GetConnectionCount(),
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			var stale []*Client
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					stale = append(stale, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range stale {
				h.evict(client)
			}
		}
	}
}

// evict removes a client from both maps and closes its send channel. Safe
// to call from any goroutine and idempotent: Send is only ever closed here,
// under the write lock, guarded by the membership check, so a client still
// present in the maps always has an open channel.
func (h *Hub) evict(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	slateClients := h.slateClients[client.SlateID]
	for i, c := range slateClients {
		if c == client {
			h.slateClients[client.SlateID] = append(slateClients[:i], slateClients[i+1:]...)
			break
		}
	}
	if len(h.slateClients[client.SlateID]) == 0 {
		delete(h.slateClients, client.SlateID)
	}
}

// HandleWebSocket upgrades the connection and subscribes it to a slate
func (h *Hub) HandleWebSocket(c *gin.Context) {
	slateID := c.Param("slate_id")
	if slateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slate ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		SlateID: slateID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Hub:     h,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastProgress fans a progress update out to the subscribers of its slate
func (h *Hub) BroadcastProgress(update types.ProgressUpdate) {
	h.BroadcastToSlate(update.SlateID, update)
}

// BroadcastToSlate sends a message to all connections watching a slate.
// Clients with a saturated send buffer are evicted instead of blocking the
// caller.
func (h *Hub) BroadcastToSlate(slateID string, message interface{}) {
	h.mutex.RLock()
	subscribers := len(h.slateClients[slateID])
	h.mutex.RUnlock()

	if subscribers == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	var stale []*Client
	h.mutex.RLock()
	for _, client := range h.slateClients[slateID] {
		select {
		case client.Send <- data:
		default:
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stale {
		h.evict(client)
	}
}

// BroadcastToAll sends a message to all connected clients
func (h *Hub) BroadcastToAll(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	h.broadcast <- data
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
			return
		}
	}
}
