// Package connection describes the per-player connection collaborator the
// queue core talks to, keyed by player ID.
package connection

import (
	"errors"

	"github.com/vogiaan1904/draftqueue/internal/models"
)

var ErrNotConnected = errors.New("player not connected")

// Unsubscribe releases a subscription. Calling it more than once is harmless.
type Unsubscribe func()

type Hub interface {
	Exists(playerID string) bool
	Send(playerID, event string, payload any) error
	// OnceDisconnect registers fn to run the next time the player disconnects.
	OnceDisconnect(playerID string, fn func()) (Unsubscribe, error)
	// OnceSetReadyState registers fn to run the next time the player reports a ready state.
	OnceSetReadyState(playerID string, fn func(models.ReadyState)) (Unsubscribe, error)
}
