package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AmeyaShriwas/chatappbackend/internal/metrics"
)

// Hub is the in-memory room registry: conversation key -> set of live
// subscribers. It holds nothing durable and is rebuilt empty on restart.
// It references clients, it never owns their lifetime.
type Hub struct {
	log   zerolog.Logger
	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{log: log, rooms: make(map[string]map[*Client]bool)}
}

// Join subscribes c to the room for key, creating the room on first
// subscriber. Re-joining is a no-op.
func (h *Hub) Join(key string, c *Client) {
	h.mu.Lock(); defer h.mu.Unlock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
		metrics.RoomsActive.Inc()
	}
	h.rooms[key][c] = true
}

// Leave removes c from the room; the last subscriber out deletes the room
// entry so empty rooms never accumulate.
func (h *Hub) Leave(key string, c *Client) {
	h.mu.Lock(); defer h.mu.Unlock()
	m := h.rooms[key]
	if m == nil { return }
	delete(m, c)
	if len(m) == 0 {
		delete(h.rooms, key)
		metrics.RoomsActive.Dec()
	}
}

// Broadcast delivers payload to every subscriber of key, best effort. A
// client with a stalled send buffer is dropped and closed rather than
// allowed to block the rest of the room. Callers serialize broadcasts per
// key, so every subscriber observes one room's messages in the same order.
func (h *Hub) Broadcast(key string, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("broadcast marshal failed")
		return
	}
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.rooms[key]))
	for c := range h.rooms[key] { conns = append(conns, c) }
	h.mu.RUnlock()
	for _, c := range conns {
		if !c.enqueue(b) {
			metrics.BroadcastDrops.Inc()
			go c.Close()
		}
	}
}

func (h *Hub) subscribers(key string) int {
	h.mu.RLock(); defer h.mu.RUnlock()
	return len(h.rooms[key])
}

func (h *Hub) hasRoom(key string) bool {
	h.mu.RLock(); defer h.mu.RUnlock()
	_, ok := h.rooms[key]
	return ok
}
