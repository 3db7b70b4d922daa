package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/draftqueue/internal/delivery/kafka"
	dqErrors "github.com/vogiaan1904/draftqueue/internal/errors"
	"github.com/vogiaan1904/draftqueue/internal/service"
)

func (c *Consumer) HandleDraftSessionEnded(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.DraftSessionEndedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleDraftSessionEnded: %v", err)
		return err
	}

	err := c.dqSvc.EndSession(ctx, service.EndSessionInput{
		SessionID: e.SessionID,
		Reason:    e.Reason,
		EndedAt:   e.EndedAt,
	})
	if errors.Is(err, dqErrors.ErrSessionNotFound) {
		// Sessions not launched by this instance are not ours to release.
		return nil
	}
	if err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleDraftSessionEnded: %v", err)
		return err
	}

	return nil
}
