package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
)

// Hub fans backend wake-up events out to every connected status client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    []byte
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and replays the most recent event to it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()

	if last != nil {
		select {
		case c.send <- last:
		default:
		}
	}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// OnEvent implements wakeup.Observer.
func (h *Hub) OnEvent(e wakeup.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("marshal wakeup event", "error", err)
		return
	}

	h.mu.Lock()
	h.last = data
	h.mu.Unlock()

	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
