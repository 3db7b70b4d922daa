package models

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	ErrDraftAlreadyStarted = errors.New("draft already started")
	ErrDraftNoUsers        = errors.New("draft has no users")
)

type SessionStatus string

const (
	SessionStatusCreated  SessionStatus = "created"
	SessionStatusDrafting SessionStatus = "drafting"
	SessionStatusEnded    SessionStatus = "ended"
)

// DraftSession is the hand-off object given to the draft engine. Configuration
// fields are written before the session is registered and are read-only after;
// membership and status are guarded by mu because the draft engine mutates them.
type DraftSession struct {
	ID                  string
	QueueID             string
	Managed             bool
	SetRestriction      []string
	PickedCardsPerRound int
	MaxTimer            time.Duration
	CreatedAt           time.Time

	mu        sync.RWMutex
	users     []string
	status    SessionStatus
	startedAt *time.Time
	endedAt   *time.Time
}

func NewDraftSession(id string) *DraftSession {
	return &DraftSession{
		ID:                  id,
		PickedCardsPerRound: 1,
		CreatedAt:           time.Now(),
		status:              SessionStatusCreated,
	}
}

// AddUser appends the player if not already present and reports whether it was added.
func (s *DraftSession) AddUser(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.users, playerID) {
		return false
	}
	s.users = append(s.users, playerID)
	return true
}

func (s *DraftSession) RemoveUser(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.users, playerID)
	if idx < 0 {
		return false
	}
	s.users = slices.Delete(s.users, idx, idx+1)
	return true
}

func (s *DraftSession) HasUser(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.users, playerID)
}

func (s *DraftSession) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

func (s *DraftSession) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *DraftSession) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *DraftSession) StartDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != SessionStatusCreated {
		return ErrDraftAlreadyStarted
	}
	if len(s.users) == 0 {
		return ErrDraftNoUsers
	}

	now := time.Now()
	s.status = SessionStatusDrafting
	s.startedAt = &now
	return nil
}

func (s *DraftSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == SessionStatusEnded {
		return
	}
	now := time.Now()
	s.status = SessionStatusEnded
	s.endedAt = &now
}

func (s *DraftSession) IsLive() bool {
	return s.Status() != SessionStatusEnded
}

// RestrictedToSingleSet reports whether the session pool is exactly {setCode}.
func (s *DraftSession) RestrictedToSingleSet(setCode string) bool {
	return len(s.SetRestriction) == 1 && s.SetRestriction[0] == setCode
}
