package connection

import (
	"sync"

	"github.com/vogiaan1904/draftqueue/internal/models"
)

// Message is a payload delivered to an in-memory connection.
type Message struct {
	Event   string
	Payload any
}

// MemoryHub is an in-process Hub. Tests drive it by
// calling Connect, Disconnect and SetReadyState directly.
type MemoryHub struct {
	mu    sync.Mutex
	conns map[string]*memoryConn
}

type memoryConn struct {
	disconnect Listeners[struct{}]
	ready      Listeners[models.ReadyState]
	inbox      []Message
}

func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		conns: make(map[string]*memoryConn),
	}
}

func (h *MemoryHub) Connect(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[playerID]; !ok {
		h.conns[playerID] = &memoryConn{}
	}
}

// Disconnect drops the connection and fires its disconnect listeners.
func (h *MemoryHub) Disconnect(playerID string) {
	h.mu.Lock()
	c, ok := h.conns[playerID]
	delete(h.conns, playerID)
	h.mu.Unlock()

	if ok {
		c.ready.Close()
		c.disconnect.CloseAndFire(struct{}{})
	}
}

// SetReadyState fires the player's ready-state listeners and returns how many ran.
func (h *MemoryHub) SetReadyState(playerID string, state models.ReadyState) int {
	c, ok := h.get(playerID)
	if !ok {
		return 0
	}
	return c.ready.Fire(state)
}

func (h *MemoryHub) Exists(playerID string) bool {
	_, ok := h.get(playerID)
	return ok
}

func (h *MemoryHub) Send(playerID, event string, payload any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[playerID]
	if !ok {
		return ErrNotConnected
	}
	c.inbox = append(c.inbox, Message{Event: event, Payload: payload})
	return nil
}

func (h *MemoryHub) OnceDisconnect(playerID string, fn func()) (Unsubscribe, error) {
	c, ok := h.get(playerID)
	if !ok {
		return nil, ErrNotConnected
	}
	return c.disconnect.Add(func(struct{}) { fn() })
}

func (h *MemoryHub) OnceSetReadyState(playerID string, fn func(models.ReadyState)) (Unsubscribe, error) {
	c, ok := h.get(playerID)
	if !ok {
		return nil, ErrNotConnected
	}
	return c.ready.Add(fn)
}

// Messages returns a copy of everything sent to the player, optionally
// filtered to the given events.
func (h *MemoryHub) Messages(playerID string, events ...string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[playerID]
	if !ok {
		return nil
	}

	out := make([]Message, 0, len(c.inbox))
	for _, m := range c.inbox {
		if len(events) == 0 || contains(events, m.Event) {
			out = append(out, m)
		}
	}
	return out
}

// Listening reports how many disconnect and ready-state listeners the player has.
func (h *MemoryHub) Listening(playerID string) (disconnect, ready int) {
	c, ok := h.get(playerID)
	if !ok {
		return 0, 0
	}
	return c.disconnect.Len(), c.ready.Len()
}

func (h *MemoryHub) ClearMessages(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[playerID]; ok {
		c.inbox = nil
	}
}

func (h *MemoryHub) get(playerID string) (*memoryConn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[playerID]
	return c, ok
}

func contains(events []string, event string) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
