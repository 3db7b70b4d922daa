package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vogiaan1904/draftqueue/config"
	repo "github.com/vogiaan1904/draftqueue/internal/repository/redis"
	"github.com/vogiaan1904/draftqueue/pkg/logger"
)

// PlayerAuthService issues the tokens players present when opening a
// websocket connection. The token subject is the player ID, which the server
// assigns; a player keeps its ID only by renewing a valid token.
type PlayerAuthService interface {
	IssueToken(ctx context.Context, in IssueTokenInput) (*IssueTokenOutput, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	RevokeToken(ctx context.Context, token, reason string) error
}

type playerAuthService struct {
	tokens repo.TokenRepository
	conf   config.JWTConfig
	now    func() time.Time
	l      logger.Logger
}

// NewPlayerAuthService builds the auth service. tokens may be nil, in which
// case revocation is unavailable.
func NewPlayerAuthService(
	tokens repo.TokenRepository,
	conf config.JWTConfig,
	l logger.Logger,
) PlayerAuthService {
	return &playerAuthService{
		tokens: tokens,
		conf:   conf,
		now:    time.Now,
		l:      l,
	}
}

func (s *playerAuthService) IssueToken(ctx context.Context, in IssueTokenInput) (*IssueTokenOutput, error) {
	playerID := uuid.NewString()
	if in.Token != "" {
		renewed, err := s.VerifyToken(ctx, in.Token)
		if err != nil {
			return nil, err
		}
		playerID = renewed
	}

	now := s.now()
	expAt := now.Add(s.conf.Expiry)

	claims := jwt.RegisteredClaims{
		Subject:   playerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expAt),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		s.l.Errorf(ctx, "service.playerAuthService.IssueToken: %v", err)
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssueTokenOutput{
		PlayerID:  playerID,
		Token:     tokenStr,
		ExpiresAt: expAt,
	}, nil
}

func (s *playerAuthService) VerifyToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(ctx, token)
	if err != nil {
		return "", err
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsRevoked(ctx, token)
		if err != nil {
			s.l.Errorf(ctx, "service.playerAuthService.VerifyToken: %v", err)
			return "", fmt.Errorf("failed to validate token: %w", err)
		}
		if revoked {
			s.l.Warnf(ctx, "service.playerAuthService.VerifyToken: %v", ErrTokenRevoked)
			return "", ErrTokenRevoked
		}
	}

	return claims.Subject, nil
}

func (s *playerAuthService) RevokeToken(ctx context.Context, token, reason string) error {
	if s.tokens == nil {
		return ErrRevocationUnavailable
	}

	claims, err := s.parse(ctx, token)
	if err != nil {
		return err
	}

	ttl := s.conf.Expiry
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}

	if err := s.tokens.Revoke(ctx, token, reason, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *playerAuthService) parse(ctx context.Context, token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrTokenEmpty
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnexpectedSignature
		}
		return []byte(s.conf.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		s.l.Warnf(ctx, "Invalid JWT token: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalidClaims
	}

	return claims, nil
}
