package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Op identifies what changed in the cache.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
)

// Event is one cache change, broadcast to every watcher.
type Event struct {
	Op  Op        `json:"op"`
	Key string    `json:"key,omitempty"`
	At  time.Time `json:"at"`
}

// Client is one subscriber connection. The hub only pushes bytes; the
// transport lives with whoever registered the client.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub fans cache change events out to registered clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Client]struct{})}
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a client.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish serializes the event and sends it to every client.
func (h *Hub) Publish(ev Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if ok := client.Send(message); !ok {
			// write failed; the owning handler unregisters on its side
		}
	}
}
