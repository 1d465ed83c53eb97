package hub

import (
	"context"
	"log"
	"sync"
)

// Hub tracks monitor clients and fans frame messages out to them. A client
// that cannot keep up is dropped rather than slowing the broadcaster.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	stopped bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a client. After the hub stops the client is closed at once.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		close(c.send)
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("Client connected (total: %d)", n)
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	h.remove(c)
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("Client disconnected (total: %d)", n)
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues msg for one client. It reports false when the client is no
// longer registered or its buffer is full.
func (h *Hub) Send(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Broadcast queues msg for every client and drops those whose buffer is
// full.
func (h *Hub) Broadcast(msg []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Println("Client send buffer full, dropping client")
		h.Unregister(c)
	}
}

// Run blocks until ctx is cancelled, then closes every client and refuses
// new ones.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	h.stopped = true
	for c := range h.clients {
		h.remove(c)
	}
	h.mu.Unlock()
	log.Println("Hub stopped")
}
