// Package queue owns the waiting lists of every queue in the catalog. All
// membership changes run on the dispatch loop.
package queue

import (
	"context"
	"fmt"
	"slices"

	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/dispatch"
	"github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

// HandOff receives the group sliced off a queue that reached its player count.
// Both methods are called from inside reactions on the dispatch loop.
type HandOff interface {
	Start(queueID string, players []string)
	// InCheck reports whether the player is a candidate of an open ready check.
	InCheck(playerID string) bool
}

// Events is told about players that leave a queue by disconnecting.
// Implementations must not block.
type Events interface {
	PlayerDisconnected(ctx context.Context, playerID, queueID string)
}

type Registry interface {
	Register(ctx context.Context, playerID, queueID string) error
	// Unregister removes the player from queueID, or from whichever queue it
	// waits in when queueID is empty. It returns the queue the player left.
	Unregister(ctx context.Context, playerID, queueID string) (string, error)
	// Status returns the number of waiting players per queue.
	Status(ctx context.Context) (map[string]int, error)
	// Waiting returns a copy of every waiting list in queue order.
	Waiting(ctx context.Context) (map[string][]string, error)
	// Requeue registers the player again as an independent reaction. Failures
	// are logged.
	Requeue(playerID, queueID string)
	OnQueueFilled(h HandOff)
	SetEvents(e Events)
}

type playerQueue struct {
	queueID     string
	playerCount int
	players     []string
}

type waitingEntry struct {
	queueID string
	seq     uint64
	unsub   connection.Unsubscribe
}

type registry struct {
	loop     *dispatch.Loop
	catalog  *catalog.Catalog
	hub      connection.Hub
	sessions session.Registry
	l        logger.Logger

	// Owned by the dispatch loop.
	queues  map[string]*playerQueue
	waiting map[string]waitingEntry
	seq     uint64
	handOff HandOff
	events  Events
}

func NewRegistry(
	loop *dispatch.Loop,
	cat *catalog.Catalog,
	hub connection.Hub,
	sessions session.Registry,
	l logger.Logger,
) Registry {
	r := &registry{
		loop:     loop,
		catalog:  cat,
		hub:      hub,
		sessions: sessions,
		l:        l,
		queues:   make(map[string]*playerQueue),
		waiting:  make(map[string]waitingEntry),
	}

	for _, def := range cat.All() {
		r.queues[def.ID] = &playerQueue{
			queueID:     def.ID,
			playerCount: def.PlayerCount,
		}
	}

	return r
}

func (r *registry) OnQueueFilled(h HandOff) {
	r.handOff = h
}

func (r *registry) SetEvents(e Events) {
	r.events = e
}

func (r *registry) Register(ctx context.Context, playerID, queueID string) error {
	var err error
	if doErr := r.loop.Do(ctx, func() { err = r.register(ctx, playerID, queueID) }); doErr != nil {
		return doErr
	}
	return err
}

func (r *registry) Unregister(ctx context.Context, playerID, queueID string) (string, error) {
	var (
		left string
		err  error
	)
	if doErr := r.loop.Do(ctx, func() { left, err = r.unregister(playerID, queueID) }); doErr != nil {
		return "", doErr
	}
	return left, err
}

func (r *registry) Status(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(r.queues))
	err := r.loop.Do(ctx, func() {
		for id, q := range r.queues {
			out[id] = len(q.players)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *registry) Waiting(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(r.queues))
	err := r.loop.Do(ctx, func() {
		for id, q := range r.queues {
			out[id] = slices.Clone(q.players)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *registry) Requeue(playerID, queueID string) {
	r.loop.Post(func() {
		ctx := context.Background()
		if err := r.register(ctx, playerID, queueID); err != nil {
			r.l.Warnf(ctx, "queue.registry.Requeue: player %s into %s: %v", playerID, queueID, err)
		}
	})
}

func (r *registry) register(ctx context.Context, playerID, queueID string) error {
	if !r.hub.Exists(playerID) {
		r.l.Errorf(ctx, "queue.registry.register: no connection for player %s", playerID)
		return errors.ErrInternalInconsistency
	}

	if _, ok := r.sessions.FindByPlayer(playerID); ok {
		return errors.ErrAlreadyInSession
	}

	if r.handOff != nil && r.handOff.InCheck(playerID) {
		return errors.ErrInReadyCheck
	}

	q, ok := r.queues[queueID]
	if !ok {
		return fmt.Errorf("%w '%s'", errors.ErrInvalidQueue, queueID)
	}

	r.remove(playerID)

	r.seq++
	seq := r.seq
	unsub, err := r.hub.OnceDisconnect(playerID, func() {
		r.loop.Post(func() { r.onWaitingDisconnect(playerID, seq) })
	})
	if err != nil {
		r.l.Errorf(ctx, "queue.registry.register: subscribe disconnect for %s: %v", playerID, err)
		return errors.ErrInternalInconsistency
	}

	q.players = append(q.players, playerID)
	r.waiting[playerID] = waitingEntry{queueID: queueID, seq: seq, unsub: unsub}

	r.l.Debug(ctx, "Player registered",
		"player_id", playerID,
		"queue_id", queueID,
		"waiting", len(q.players),
	)

	if len(q.players) >= q.playerCount {
		group := slices.Clone(q.players[:q.playerCount])
		for _, uid := range group {
			r.remove(uid)
		}

		if r.handOff == nil {
			r.l.Errorf(ctx, "queue.registry.register: queue %s filled without a hand-off target", queueID)
			return nil
		}
		r.handOff.Start(queueID, group)
	}

	return nil
}

func (r *registry) unregister(playerID, queueID string) (string, error) {
	entry, waiting := r.waiting[playerID]

	if queueID == "" {
		if !waiting {
			return "", errors.ErrPlayerNotFound
		}
		queueID = entry.queueID
	}

	if _, ok := r.queues[queueID]; !ok {
		return "", fmt.Errorf("%w '%s'", errors.ErrInvalidQueue, queueID)
	}

	if !waiting || entry.queueID != queueID {
		return "", errors.ErrPlayerNotFound
	}

	r.remove(playerID)
	return queueID, nil
}

func (r *registry) onWaitingDisconnect(playerID string, seq uint64) {
	entry, ok := r.waiting[playerID]
	if !ok || entry.seq != seq {
		return
	}

	ctx := context.Background()
	r.remove(playerID)
	r.l.Debug(ctx, "Waiting player disconnected",
		"player_id", playerID,
		"queue_id", entry.queueID,
	)

	if r.events != nil {
		r.events.PlayerDisconnected(ctx, playerID, entry.queueID)
	}
}

// remove drops the player from the queue it waits in and releases its
// disconnect subscription. It is a no-op for players that are not waiting.
func (r *registry) remove(playerID string) {
	entry, ok := r.waiting[playerID]
	if !ok {
		return
	}
	delete(r.waiting, playerID)

	if q, ok := r.queues[entry.queueID]; ok {
		if idx := slices.Index(q.players, playerID); idx >= 0 {
			q.players = slices.Delete(q.players, idx, idx+1)
		}
	}

	if entry.unsub != nil {
		entry.unsub()
	}
}
