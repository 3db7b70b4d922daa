// Package ws carries player connections over websockets. Hub implements
// connection.Hub for the queue core.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

var ErrSendBufferFull = errors.New("connection send buffer is full")

// Hub tracks one live connection per player. A second connection for the same
// player replaces the first, which is closed and reported as disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	l       logger.Logger
}

var _ connection.Hub = (*Hub)(nil)

func NewHub(l logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		l:       l,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	prev := h.clients[c.playerID]
	h.clients[c.playerID] = c
	h.mu.Unlock()

	if prev != nil {
		h.l.Infof(context.Background(), "ws.Hub.register: replacing connection of player %s", c.playerID)
		prev.close()
	}
}

// unregister forgets c and fires its disconnect listeners. It is a no-op for
// anything but the first call per client.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.playerID] == c {
		delete(h.clients, c.playerID)
	}
	h.mu.Unlock()

	c.close()
	c.gone.Do(func() {
		c.ready.Close()
		c.disconnect.CloseAndFire(struct{}{})
	})
}

func (h *Hub) get(playerID string) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[playerID]
	return c, ok
}

func (h *Hub) Exists(playerID string) bool {
	_, ok := h.get(playerID)
	return ok
}

func (h *Hub) Send(playerID, event string, payload any) error {
	c, ok := h.get(playerID)
	if !ok {
		return connection.ErrNotConnected
	}

	data, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (h *Hub) OnceDisconnect(playerID string, fn func()) (connection.Unsubscribe, error) {
	c, ok := h.get(playerID)
	if !ok {
		return nil, connection.ErrNotConnected
	}
	return c.disconnect.Add(func(struct{}) { fn() })
}

func (h *Hub) OnceSetReadyState(playerID string, fn func(models.ReadyState)) (connection.Unsubscribe, error) {
	c, ok := h.get(playerID)
	if !ok {
		return nil, connection.ErrNotConnected
	}
	return c.ready.Add(fn)
}

// Broadcast sends the event to every connected player. Players whose buffer
// is full are skipped.
func (h *Hub) Broadcast(event string, payload any) error {
	data, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.enqueue(data); err != nil {
			h.l.Warnf(context.Background(), "ws.Hub.Broadcast: player %s: %v", c.playerID, err)
		}
	}
	return nil
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll drops every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	return json.Marshal(outboundFrame{Event: event, Data: payload})
}
