package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is a payload pushed to connected clients (notification badges,
// unread counters).
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub manages all WebSocket connections. A user may hold several
// connections (multiple tabs); events addressed to a user reach all of
// them.
type Hub struct {
	// Registered clients per user
	clients map[uint]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
			log.Printf("🔌 Client registered: user=%d", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				if conns[client] {
					delete(conns, client)
					close(client.Send)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: user=%d", client.UserID)
		}
	}
}

// SendToUser delivers an event to every connection a user holds.
// Delivery is best effort; slow clients are dropped.
func (h *Hub) SendToUser(userID uint, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Error marshaling websocket event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			delete(h.clients[userID], client)
			close(client.Send)
		}
	}
}

// ConnectedUsers returns the number of distinct users currently connected.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
