package hub

import (
	"encoding/json"
	"sync"

	"github.com/akshayakula/myogen/internal/log"
)

// Hub maintains the set of subscribed clients and broadcasts events to
// them. All client-set mutation happens on the Run goroutine.
type Hub struct {
	name string

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// New creates a hub; name appears in logs only.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client set. Call in a goroutine; it runs for the life of
// the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client connected", "hub", h.name, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("hub client disconnected", "hub", h.name, "clients", count)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client can't keep up with the event rate; drop it
					// rather than let its buffer stall the pipeline.
					close(client.send)
					delete(h.clients, client)
					log.Warn("dropped slow hub client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts an event to every subscriber. Never blocks: if the
// broadcast queue is full the event is dropped.
func (h *Hub) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Debug("hub broadcast queue full, dropping event", "hub", h.name, "type", string(evt.Type))
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
