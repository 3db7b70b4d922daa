package errors

import "errors"

var (
	ErrAlreadyInSession = errors.New("already in a session")
	ErrSessionNotFound  = errors.New("session not found")
)
