package models

import "time"

type UpdateType string

const (
	UpdateTypeSnapshot UpdateType = "status_snapshot"
)

// StatusUpdateEvent is published to Redis Pub/Sub whenever a fresh queue status
// snapshot has been stored.
type StatusUpdateEvent struct {
	UpdateType UpdateType  `json:"update_type"`
	Status     QueueStatus `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
}
