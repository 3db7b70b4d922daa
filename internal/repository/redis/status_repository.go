package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

const (
	statusKey     = "draftqueue:status"
	statusChannel = "draftqueue:status:updates"
)

// StatusRepository publishes queue status snapshots for other instances and
// dashboards. Nothing in the service reads queue state back from it.
type StatusRepository interface {
	SaveSnapshot(ctx context.Context, st *models.QueueStatus) error
	GetSnapshot(ctx context.Context) (*models.QueueStatus, error)
	// Subscribe calls fn for every published update until ctx is done.
	Subscribe(ctx context.Context, fn func(models.StatusUpdateEvent)) error
}

type redisStatusRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisStatusRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) StatusRepository {
	return &redisStatusRepository{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

func (r *redisStatusRepository) SaveSnapshot(ctx context.Context, st *models.QueueStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		r.l.Errorf(ctx, "redisStatusRepository.SaveSnapshot.Marshal: %v", err)
		return err
	}

	evt, err := json.Marshal(models.StatusUpdateEvent{
		UpdateType: models.UpdateTypeSnapshot,
		Status:     *st,
		Timestamp:  time.Now(),
	})
	if err != nil {
		r.l.Errorf(ctx, "redisStatusRepository.SaveSnapshot.Marshal: %v", err)
		return err
	}

	pipe := r.cli.Pipeline()
	pipe.Set(ctx, statusKey, data, r.ttl)
	pipe.Publish(ctx, statusChannel, evt)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisStatusRepository.SaveSnapshot.Exec: %v", err)
		return err
	}

	r.l.Debug(ctx, "Saved status snapshot",
		"playing", st.Playing,
		"queues", len(st.Queues),
	)

	return nil
}

// GetSnapshot returns the last stored snapshot, or redis.Nil once it expired.
func (r *redisStatusRepository) GetSnapshot(ctx context.Context) (*models.QueueStatus, error) {
	data, err := r.cli.Get(ctx, statusKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.l.Errorf(ctx, "redisStatusRepository.GetSnapshot: %v", err)
		}
		return nil, err
	}

	var st models.QueueStatus
	if err := json.Unmarshal(data, &st); err != nil {
		r.l.Errorf(ctx, "redisStatusRepository.GetSnapshot.Unmarshal: %v", err)
		return nil, err
	}

	return &st, nil
}

func (r *redisStatusRepository) Subscribe(ctx context.Context, fn func(models.StatusUpdateEvent)) error {
	sub := r.cli.Subscribe(ctx, statusChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", statusChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var evt models.StatusUpdateEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.l.Warnf(ctx, "redisStatusRepository.Subscribe.Unmarshal: %v", err)
				continue
			}
			fn(evt)
		}
	}
}
