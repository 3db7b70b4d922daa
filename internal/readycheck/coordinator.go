// Package readycheck runs the confirmation step between a full queue and a
// launched draft: every candidate has to report Ready before the deadline.
package readycheck

import (
	"context"
	"slices"
	"time"

	"github.com/vogiaan1904/draftqueue/config"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/dispatch"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
	"github.com/vogiaan1904/draftqueue/pkg/util"
)

type Requeuer interface {
	Requeue(playerID, queueID string)
}

type Launcher interface {
	Launch(queueID string, players []string)
}

// Events receives ready-check lifecycle notifications. Implementations must not block.
type Events interface {
	ReadyCheckStarted(ctx context.Context, queueID string, players []string, deadline time.Time)
	ReadyCheckResolved(ctx context.Context, queueID string, outcome Outcome, requeued []string)
}

type Coordinator struct {
	hub      connection.Hub
	loop     *dispatch.Loop
	requeuer Requeuer
	launcher Launcher
	events   Events
	timeout  time.Duration
	l        logger.Logger

	now   func() time.Time
	after func(d time.Duration, fn func()) Timer

	// Owned by the dispatch loop.
	active     map[*table]struct{}
	candidates map[string]*table
}

func NewCoordinator(
	hub connection.Hub,
	loop *dispatch.Loop,
	requeuer Requeuer,
	launcher Launcher,
	events Events,
	cfg config.ReadyCheckConfig,
	l logger.Logger,
) *Coordinator {
	return &Coordinator{
		hub:      hub,
		loop:     loop,
		requeuer: requeuer,
		launcher: launcher,
		events:   events,
		timeout:  cfg.Timeout,
		l:        l,
		now:      time.Now,
		after: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		active:     make(map[*table]struct{}),
		candidates: make(map[string]*table),
	}
}

// Start opens a ready check for players. It must run on the dispatch loop.
func (c *Coordinator) Start(queueID string, players []string) {
	ctx := context.Background()
	t := newTable(queueID, slices.Clone(players), c.now().Add(c.timeout))
	c.active[t] = struct{}{}
	for _, p := range t.players {
		c.candidates[p] = t
	}

	c.l.Info(ctx, "Ready check started",
		"queue_id", queueID,
		"players", len(players),
		"deadline", t.deadline,
	)
	if c.events != nil {
		c.events.ReadyCheckStarted(ctx, queueID, t.players, t.deadline)
	}

	for _, p := range t.players {
		if !c.hub.Exists(p) {
			c.l.Warnf(ctx, "readycheck.Coordinator.Start: candidate %s already disconnected", p)
			t.states[p] = models.ReadyStateNotReady
			c.cancel(ctx, t, OutcomeDisconnected)
			return
		}
	}

	for _, p := range t.players {
		if err := c.subscribe(t, p); err != nil {
			c.l.Warnf(ctx, "readycheck.Coordinator.Start: subscribe %s: %v", p, err)
			t.states[p] = models.ReadyStateNotReady
			c.cancel(ctx, t, OutcomeDisconnected)
			return
		}
	}

	t.timer = c.after(c.timeout, func() {
		c.loop.Post(func() { c.onTimeout(t) })
	})

	msg := models.ReadyCheckMessage{
		QueueID:  queueID,
		Deadline: util.TimeToISO8601Str(t.deadline),
		Table:    t.rows(),
	}
	for _, p := range t.players {
		c.send(ctx, p, models.EventReadyCheck, msg)
	}
}

// Shutdown closes every open table without requeueing anyone.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	return c.loop.Do(ctx, func() {
		for t := range c.active {
			t.close()
			c.retire(t)
		}
	})
}

// InCheck reports whether the player is a candidate of an open ready check.
// It must run on the dispatch loop.
func (c *Coordinator) InCheck(playerID string) bool {
	_, ok := c.candidates[playerID]
	return ok
}

// Pending returns the number of ready checks in progress.
func (c *Coordinator) Pending(ctx context.Context) (int, error) {
	var n int
	if err := c.loop.Do(ctx, func() { n = len(c.active) }); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Coordinator) subscribe(t *table, playerID string) error {
	unsubDisconnect, err := c.hub.OnceDisconnect(playerID, func() {
		c.loop.Post(func() { c.onDisconnect(t, playerID) })
	})
	if err != nil {
		return err
	}
	t.unsubs = append(t.unsubs, unsubDisconnect)

	unsubReady, err := c.hub.OnceSetReadyState(playerID, func(state models.ReadyState) {
		c.loop.Post(func() { c.onReadyState(t, playerID, state) })
	})
	if err != nil {
		return err
	}
	t.unsubs = append(t.unsubs, unsubReady)
	return nil
}

func (c *Coordinator) onReadyState(t *table, playerID string, state models.ReadyState) {
	if t.terminal {
		return
	}
	ctx := context.Background()

	if state != models.ReadyStateReady {
		t.states[playerID] = models.ReadyStateNotReady
		c.cancel(ctx, t, OutcomeDeclined)
		return
	}

	t.states[playerID] = models.ReadyStateReady
	update := models.ReadyCheckUpdateMessage{QueueID: t.queueID, Table: t.rows()}
	for _, p := range t.players {
		c.send(ctx, p, models.EventReadyCheckUpdate, update)
	}

	if t.allReady() {
		c.succeed(ctx, t)
	}
}

func (c *Coordinator) onDisconnect(t *table, playerID string) {
	if t.terminal {
		return
	}
	t.states[playerID] = models.ReadyStateNotReady
	c.cancel(context.Background(), t, OutcomeDisconnected)
}

func (c *Coordinator) onTimeout(t *table) {
	if t.terminal {
		return
	}
	c.cancel(context.Background(), t, OutcomeTimedOut)
}

func (c *Coordinator) succeed(ctx context.Context, t *table) {
	if !t.close() {
		return
	}
	c.retire(t)

	c.l.Info(ctx, "Ready check succeeded", "queue_id", t.queueID)
	if c.events != nil {
		c.events.ReadyCheckResolved(ctx, t.queueID, OutcomeSucceeded, nil)
	}

	c.launcher.Launch(t.queueID, slices.Clone(t.players))
}

func (c *Coordinator) cancel(ctx context.Context, t *table, outcome Outcome) {
	if !t.close() {
		return
	}
	c.retire(t)

	rows := t.rows()
	var requeued []string
	for _, p := range t.players {
		requeue := t.shouldRequeue(p, outcome)

		c.send(ctx, p, models.EventReadyCheckUpdate, models.ReadyCheckUpdateMessage{QueueID: t.queueID, Table: rows})
		c.send(ctx, p, models.EventReadyCheckCancel, models.ReadyCheckCancelMessage{QueueID: t.queueID, Requeued: requeue})

		if requeue {
			requeued = append(requeued, p)
			c.requeuer.Requeue(p, t.queueID)
		}
	}

	c.l.Info(ctx, "Ready check cancelled",
		"queue_id", t.queueID,
		"outcome", string(outcome),
		"requeued", len(requeued),
	)
	if c.events != nil {
		c.events.ReadyCheckResolved(ctx, t.queueID, outcome, requeued)
	}
}

// retire forgets a closed table so its candidates may register again.
func (c *Coordinator) retire(t *table) {
	delete(c.active, t)
	for _, p := range t.players {
		if c.candidates[p] == t {
			delete(c.candidates, p)
		}
	}
}

func (c *Coordinator) send(ctx context.Context, playerID, event string, payload any) {
	if err := c.hub.Send(playerID, event, payload); err != nil {
		c.l.Debugf(ctx, "readycheck.Coordinator.send: %s to %s: %v", event, playerID, err)
	}
}
