// Package session keeps track of the draft sessions started from queues.
package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/models"
)

type Registry interface {
	Has(sessionID string) bool
	Add(s *models.DraftSession) error
	Remove(sessionID string) (*models.DraftSession, error)
	Get(sessionID string) (*models.DraftSession, bool)
	// FindByPlayer returns the live session the player belongs to, if any.
	FindByPlayer(playerID string) (*models.DraftSession, bool)
	List() []*models.DraftSession
}

type memoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*models.DraftSession
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		sessions: make(map[string]*models.DraftSession),
	}
}

func (r *memoryRegistry) Has(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

func (r *memoryRegistry) Add(s *models.DraftSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already registered", s.ID)
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *memoryRegistry) Remove(sessionID string) (*models.DraftSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return s, nil
}

func (r *memoryRegistry) Get(sessionID string) (*models.DraftSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

func (r *memoryRegistry) FindByPlayer(playerID string) (*models.DraftSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.IsLive() && s.HasUser(playerID) {
			return s, true
		}
	}
	return nil, false
}

// List returns the sessions ordered by creation time.
func (r *memoryRegistry) List() []*models.DraftSession {
	r.mu.RLock()
	out := make([]*models.DraftSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
