package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/draftqueue/internal/catalog"
	"github.com/vogiaan1904/draftqueue/internal/delivery/kafka"
	"github.com/vogiaan1904/draftqueue/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/internal/queue"
	"github.com/vogiaan1904/draftqueue/internal/session"
	"github.com/vogiaan1904/draftqueue/internal/status"
	pkgLog "github.com/vogiaan1904/draftqueue/pkg/logger"
)

type DraftQueueService interface {
	RegisterPlayer(ctx context.Context, in RegisterPlayerInput) error
	UnregisterPlayer(ctx context.Context, in UnregisterPlayerInput) error
	GetQueueStatus(ctx context.Context) (*models.QueueStatus, error)
	ListQueues(ctx context.Context) []models.QueueDefinition
	// EndSession releases the players of a finished draft so they can queue again.
	EndSession(ctx context.Context, in EndSessionInput) error
}

type draftQueueService struct {
	cat      *catalog.Catalog
	registry queue.Registry
	sessions session.Registry
	reporter *status.Reporter
	prod     producer.Producer
	l        pkgLog.Logger
}

// NewDraftQueueService wires the queue core behind a transport-neutral API.
// prod may be nil when Kafka is disabled.
func NewDraftQueueService(
	cat *catalog.Catalog,
	registry queue.Registry,
	sessions session.Registry,
	reporter *status.Reporter,
	prod producer.Producer,
	l pkgLog.Logger,
) DraftQueueService {
	return &draftQueueService{
		cat:      cat,
		registry: registry,
		sessions: sessions,
		reporter: reporter,
		prod:     prod,
		l:        l,
	}
}

func (s *draftQueueService) RegisterPlayer(ctx context.Context, in RegisterPlayerInput) error {
	if in.PlayerID == "" {
		return ErrPlayerIDRequired
	}

	if err := s.registry.Register(ctx, in.PlayerID, in.QueueID); err != nil {
		s.l.Warnf(ctx, "service.draftQueueService.RegisterPlayer: %v", err)
		return err
	}

	if s.prod != nil {
		if err := s.prod.PublishPlayerJoined(ctx, kafka.PlayerJoinedEvent{
			PlayerID: in.PlayerID,
			QueueID:  in.QueueID,
			JoinedAt: time.Now(),
		}); err != nil {
			s.l.Errorf(ctx, "service.draftQueueService.RegisterPlayer: %v", err)
		}
	}

	return nil
}

func (s *draftQueueService) UnregisterPlayer(ctx context.Context, in UnregisterPlayerInput) error {
	if in.PlayerID == "" {
		return ErrPlayerIDRequired
	}

	queueID, err := s.registry.Unregister(ctx, in.PlayerID, in.QueueID)
	if err != nil {
		s.l.Warnf(ctx, "service.draftQueueService.UnregisterPlayer: %v", err)
		return err
	}

	if s.prod != nil {
		if err := s.prod.PublishPlayerLeft(ctx, kafka.PlayerLeftEvent{
			PlayerID: in.PlayerID,
			QueueID:  queueID,
			Reason:   kafka.LeftReasonUnregistered,
			LeftAt:   time.Now(),
		}); err != nil {
			s.l.Errorf(ctx, "service.draftQueueService.UnregisterPlayer: %v", err)
		}
	}

	return nil
}

func (s *draftQueueService) GetQueueStatus(ctx context.Context) (*models.QueueStatus, error) {
	st, err := s.reporter.Report(ctx)
	if err != nil {
		s.l.Errorf(ctx, "service.draftQueueService.GetQueueStatus: %v", err)
		return nil, err
	}
	return st, nil
}

func (s *draftQueueService) ListQueues(ctx context.Context) []models.QueueDefinition {
	return s.cat.All()
}

func (s *draftQueueService) EndSession(ctx context.Context, in EndSessionInput) error {
	if in.SessionID == "" {
		return ErrSessionIDRequired
	}

	ss, err := s.sessions.Remove(in.SessionID)
	if err != nil {
		if err == errors.ErrSessionNotFound {
			s.l.Warnf(ctx, "service.draftQueueService.EndSession: %s: %v", in.SessionID, err)
		}
		return err
	}
	ss.End()

	s.l.Info(ctx, "Draft session ended",
		"session_id", in.SessionID,
		"reason", in.Reason,
		"players", ss.UserCount(),
	)

	return nil
}
