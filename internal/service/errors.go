package service

import "errors"

var (
	ErrPlayerIDRequired  = errors.New("player id is required")
	ErrSessionIDRequired = errors.New("session id is required")

	ErrTokenEmpty               = errors.New("token is empty")
	ErrTokenInvalid             = errors.New("token is invalid")
	ErrTokenUnexpectedSignature = errors.New("unexpected token signing method")
	ErrTokenInvalidClaims       = errors.New("token claims are invalid")
	ErrTokenRevoked             = errors.New("token has been revoked")
	ErrRevocationUnavailable    = errors.New("token revocation is not available")
)
