package service

import "time"

type RegisterPlayerInput struct {
	PlayerID string `json:"player_id"`
	QueueID  string `json:"queue_id"`
}

type UnregisterPlayerInput struct {
	PlayerID string `json:"player_id"`
	// QueueID is optional; the player's current queue is used when empty.
	QueueID string `json:"queue_id,omitempty"`
}

type EndSessionInput struct {
	SessionID string
	Reason    string
	EndedAt   time.Time
}

type IssueTokenInput struct {
	// Token is an earlier token of the same player. Without it the player is
	// new and gets a fresh identifier.
	Token string `json:"token,omitempty"`
}

type IssueTokenOutput struct {
	PlayerID  string    `json:"player_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
