package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Client represents one connected moderation dashboard
type Client struct {
	Hub  *Hub
	ID   uint
	Conn connWriter
	Send chan []byte
}

// Event is one entry on the moderation live feed
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub manages all connected dashboards and fans events out to them
type Hub struct {
	// Registered clients keyed by admin user id
	Clients map[uint]*Client

	// Broadcast channel for events to all clients
	Broadcast chan *Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new live-feed hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[uint]*Client),
		Broadcast:  make(chan *Event, 64),
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
			h.Clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("🔌 Feed client registered: admin=%d", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.ID]; ok {
				delete(h.Clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Feed client unregistered: admin=%d", client.ID)

		case event := <-h.Broadcast:
			h.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to every connected dashboard. A client
// with a full buffer is skipped, not waited on.
func (h *Hub) broadcastEvent(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to marshal feed event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.Clients {
		select {
		case client.Send <- payload:
		default:
			log.Printf("⚠️ Feed client %d send buffer full, dropping event", id)
		}
	}
}
