package connection

import "sync"

// Listeners is a set of one-shot callbacks. Fire removes every registered
// callback before invoking them in registration order. Once closed, the set
// rejects new callbacks.
type Listeners[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []listener[T]
	closed  bool
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Add registers fn. It fails with ErrNotConnected after Close or CloseAndFire.
func (ls *Listeners[T]) Add(fn func(T)) (Unsubscribe, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed {
		return nil, ErrNotConnected
	}
	ls.nextID++
	id := ls.nextID
	ls.entries = append(ls.entries, listener[T]{id: id, fn: fn})

	return func() { ls.remove(id) }, nil
}

func (ls *Listeners[T]) Fire(v T) int {
	return ls.fire(v, false)
}

// CloseAndFire closes the set and runs the callbacks registered so far.
func (ls *Listeners[T]) CloseAndFire(v T) int {
	return ls.fire(v, true)
}

// Close drops every callback without running it.
func (ls *Listeners[T]) Close() {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.closed = true
	ls.entries = nil
}

func (ls *Listeners[T]) Len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.entries)
}

func (ls *Listeners[T]) fire(v T, closeSet bool) int {
	ls.mu.Lock()
	entries := ls.entries
	ls.entries = nil
	if closeSet {
		ls.closed = true
	}
	ls.mu.Unlock()

	for _, e := range entries {
		e.fn(v)
	}
	return len(entries)
}

func (ls *Listeners[T]) remove(id uint64) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for i, e := range ls.entries {
		if e.id == id {
			ls.entries = append(ls.entries[:i], ls.entries[i+1:]...)
			return
		}
	}
}
