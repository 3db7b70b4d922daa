package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

// TokenRepository keeps a blacklist of revoked player tokens.
type TokenRepository interface {
	Revoke(ctx context.Context, token, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type redisTokenRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisTokenRepository(cli *redis.Client, l logger.Logger) TokenRepository {
	return &redisTokenRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisTokenRepository) Revoke(ctx context.Context, token, reason string, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(map[string]any{
		"reason":     reason,
		"revoked_at": time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	if err := r.cli.Set(ctx, r.blacklistKey(token), data, ttl).Err(); err != nil {
		r.l.Errorf(ctx, "redisTokenRepository.Revoke: %v", err)
		return err
	}

	r.l.Info(ctx, "Token revoked",
		"reason", reason,
		"ttl", ttl,
	)

	return nil
}

func (r *redisTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("token cannot be empty")
	}

	n, err := r.cli.Exists(ctx, r.blacklistKey(token)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisTokenRepository.IsRevoked: %v", err)
		return false, err
	}

	return n > 0, nil
}

func (r *redisTokenRepository) blacklistKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("draftqueue:token:blacklist:%s", hex.EncodeToString(hash[:]))
}
