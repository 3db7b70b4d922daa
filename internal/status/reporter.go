// Package status aggregates queue occupancy and the number of players in
// queue-launched drafts.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/queue"
	"github.com/vogiaan1904/draftqueue/internal/session"
)

type Reporter struct {
	catalog  *catalog.Catalog
	registry queue.Registry
	sessions session.Registry
	now      func() time.Time
}

func NewReporter(cat *catalog.Catalog, registry queue.Registry, sessions session.Registry) *Reporter {
	return &Reporter{
		catalog:  cat,
		registry: registry,
		sessions: sessions,
		now:      time.Now,
	}
}

// Report counts waiting players per queue and players in live managed
// sessions. A session counts toward a queue only when its set restriction is
// exactly that queue's set code; every managed session counts toward the total.
func (r *Reporter) Report(ctx context.Context) (*models.QueueStatus, error) {
	waiting, err := r.registry.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue status: %w", err)
	}

	var managed []*models.DraftSession
	total := 0
	for _, s := range r.sessions.List() {
		if !s.Managed || !s.IsLive() {
			continue
		}
		managed = append(managed, s)
		total += s.UserCount()
	}

	defs := r.catalog.All()
	out := &models.QueueStatus{
		Playing:     total,
		Queues:      make(map[string]models.QueueOccupancy, len(defs)),
		GeneratedAt: r.now(),
	}

	for _, def := range defs {
		playing := 0
		for _, s := range managed {
			if s.RestrictedToSingleSet(def.SetCode) {
				playing += s.UserCount()
			}
		}
		out.Queues[def.ID] = models.QueueOccupancy{
			Set:     def.SetCode,
			InQueue: waiting[def.ID],
			Playing: playing,
		}
	}

	return out, nil
}
