package readycheck

import (
	"time"

	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/models"
)

type Outcome string

const (
	OutcomeSucceeded    Outcome = "succeeded"
	OutcomeDeclined     Outcome = "declined"
	OutcomeDisconnected Outcome = "disconnected"
	OutcomeTimedOut     Outcome = "timed_out"
)

// Timer is the part of *time.Timer a table needs.
type Timer interface {
	Stop() bool
}

// table is one ready-check attempt. It is only touched from the dispatch loop.
type table struct {
	queueID  string
	players  []string
	states   map[string]models.ReadyState
	deadline time.Time
	terminal bool
	timer    Timer
	unsubs   []connection.Unsubscribe
}

func newTable(queueID string, players []string, deadline time.Time) *table {
	t := &table{
		queueID:  queueID,
		players:  players,
		states:   make(map[string]models.ReadyState, len(players)),
		deadline: deadline,
	}
	for _, p := range players {
		t.states[p] = models.ReadyStateUnknown
	}
	return t
}

// rows lists every candidate's state in candidate order.
func (t *table) rows() []models.PlayerReadyStatus {
	out := make([]models.PlayerReadyStatus, len(t.players))
	for i, p := range t.players {
		out[i] = models.PlayerReadyStatus{Status: t.states[p]}
	}
	return out
}

func (t *table) allReady() bool {
	for _, p := range t.players {
		if t.states[p] != models.ReadyStateReady {
			return false
		}
	}
	return true
}

// shouldRequeue applies the cancellation rule: a decline or disconnect puts
// back only Ready players, a timeout also gives undecided players another go.
func (t *table) shouldRequeue(playerID string, outcome Outcome) bool {
	switch t.states[playerID] {
	case models.ReadyStateReady:
		return true
	case models.ReadyStateUnknown:
		return outcome == OutcomeTimedOut
	}
	return false
}

// close marks the table terminal, stops its deadline and releases every
// subscription. It reports false if the table was already closed.
func (t *table) close() bool {
	if t.terminal {
		return false
	}
	t.terminal = true

	if t.timer != nil {
		t.timer.Stop()
	}
	for _, unsub := range t.unsubs {
		unsub()
	}
	t.unsubs = nil
	return true
}
