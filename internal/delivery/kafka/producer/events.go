package producer

import (
	"context"
	"time"

	kafka "github.com/vogiaan1904/draftqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/draftqueue/internal/launcher"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/queue"
	"github.com/vogiaan1904/draftqueue/internal/readycheck"
)

var (
	_ queue.Events      = (*DomainEvents)(nil)
	_ readycheck.Events = (*DomainEvents)(nil)
	_ launcher.Events   = (*DomainEvents)(nil)
)

// DomainEvents forwards queue, ready-check and launch notifications to Kafka.
type DomainEvents struct {
	p Producer
}

func NewDomainEvents(p Producer) *DomainEvents {
	return &DomainEvents{p: p}
}

func (e *DomainEvents) PlayerDisconnected(ctx context.Context, playerID, queueID string) {
	_ = e.p.PublishPlayerLeft(ctx, kafka.PlayerLeftEvent{
		PlayerID: playerID,
		QueueID:  queueID,
		Reason:   kafka.LeftReasonDisconnected,
		LeftAt:   time.Now(),
	})
}

func (e *DomainEvents) ReadyCheckStarted(ctx context.Context, queueID string, players []string, deadline time.Time) {
	_ = e.p.PublishReadyCheckStarted(ctx, kafka.ReadyCheckStartedEvent{
		QueueID:   queueID,
		PlayerIDs: players,
		Deadline:  deadline,
	})
}

func (e *DomainEvents) ReadyCheckResolved(ctx context.Context, queueID string, outcome readycheck.Outcome, requeued []string) {
	if requeued == nil {
		requeued = []string{}
	}
	_ = e.p.PublishReadyCheckResolved(ctx, kafka.ReadyCheckResolvedEvent{
		QueueID:  queueID,
		Outcome:  string(outcome),
		Requeued: requeued,
	})
}

func (e *DomainEvents) SessionLaunched(ctx context.Context, s *models.DraftSession) {
	_ = e.p.PublishSessionLaunched(ctx, kafka.SessionLaunchedEvent{
		SessionID:           s.ID,
		QueueID:             s.QueueID,
		SetRestriction:      s.SetRestriction,
		PlayerIDs:           s.Users(),
		PickedCardsPerRound: s.PickedCardsPerRound,
		MaxTimerSeconds:     int(s.MaxTimer / time.Second),
	})
}
