package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/draftqueue/internal/models"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })
	return mr, cli
}

func sampleStatus() *models.QueueStatus {
	return &models.QueueStatus{
		Playing: 8,
		Queues: map[string]models.QueueOccupancy{
			"dmu": {Set: "dmu", InQueue: 3, Playing: 8},
		},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStatusRepository_SaveAndGet(t *testing.T) {
	mr, cli := newRedis(t)
	repo := NewRedisStatusRepository(cli, 30*time.Second, logger.InitializeTestZapLogger())
	ctx := context.Background()

	require.NoError(t, repo.SaveSnapshot(ctx, sampleStatus()))

	got, err := repo.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Playing)
	assert.Equal(t, models.QueueOccupancy{Set: "dmu", InQueue: 3, Playing: 8}, got.Queues["dmu"])

	assert.Equal(t, 30*time.Second, mr.TTL(statusKey))

	mr.FastForward(31 * time.Second)
	_, err = repo.GetSnapshot(ctx)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestStatusRepository_SubscribeReceivesSnapshots(t *testing.T) {
	_, cli := newRedis(t)
	repo := NewRedisStatusRepository(cli, 30*time.Second, logger.InitializeTestZapLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan models.StatusUpdateEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- repo.Subscribe(ctx, func(evt models.StatusUpdateEvent) { received <- evt })
	}()

	require.Eventually(t, func() bool {
		n, err := cli.PubSubNumSub(context.Background(), statusChannel).Result()
		return err == nil && n[statusChannel] == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, repo.SaveSnapshot(context.Background(), sampleStatus()))

	select {
	case evt := <-received:
		assert.Equal(t, models.UpdateTypeSnapshot, evt.UpdateType)
		assert.Equal(t, 3, evt.Status.Queues["dmu"].InQueue)
	case <-time.After(time.Second):
		t.Fatal("no status update received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestStatusRepository_SnapshotIsJSON(t *testing.T) {
	mr, cli := newRedis(t)
	repo := NewRedisStatusRepository(cli, time.Minute, logger.InitializeTestZapLogger())

	require.NoError(t, repo.SaveSnapshot(context.Background(), sampleStatus()))

	raw, err := mr.Get(statusKey)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Contains(t, decoded, "queues")
	assert.Contains(t, decoded, "playing")
}

func TestTokenRepository_RevokeAndCheck(t *testing.T) {
	mr, cli := newRedis(t)
	repo := NewRedisTokenRepository(cli, logger.InitializeTestZapLogger())
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "tok", "logout", time.Minute))

	revoked, err = repo.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = repo.IsRevoked(ctx, "")
	assert.Error(t, err)
}
