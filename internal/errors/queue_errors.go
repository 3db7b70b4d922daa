package errors

import "errors"

var (
	ErrInvalidQueue          = errors.New("invalid queue")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrInternalInconsistency = errors.New("internal error")
	ErrInReadyCheck          = errors.New("player is in a ready check")
)
