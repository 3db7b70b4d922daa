package kafka

import "time"

// Events published by the draft queue service

type PlayerJoinedEvent struct {
	PlayerID  string    `json:"player_id"`
	QueueID   string    `json:"queue_id"`
	JoinedAt  time.Time `json:"joined_at"`
	Timestamp time.Time `json:"timestamp"`
}

type PlayerLeftEvent struct {
	PlayerID  string    `json:"player_id"`
	QueueID   string    `json:"queue_id"`
	Reason    string    `json:"reason"`
	LeftAt    time.Time `json:"left_at"`
	Timestamp time.Time `json:"timestamp"`
}

type ReadyCheckStartedEvent struct {
	QueueID   string    `json:"queue_id"`
	PlayerIDs []string  `json:"player_ids"`
	Deadline  time.Time `json:"deadline"`
	Timestamp time.Time `json:"timestamp"`
}

type ReadyCheckResolvedEvent struct {
	QueueID   string    `json:"queue_id"`
	Outcome   string    `json:"outcome"`
	Requeued  []string  `json:"requeued"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionLaunchedEvent struct {
	SessionID           string    `json:"session_id"`
	QueueID             string    `json:"queue_id"`
	SetRestriction      []string  `json:"set_restriction"`
	PlayerIDs           []string  `json:"player_ids"`
	PickedCardsPerRound int       `json:"picked_cards_per_round"`
	MaxTimerSeconds     int       `json:"max_timer_seconds"`
	Timestamp           time.Time `json:"timestamp"`
}

// Events consumed by the draft queue service (from the draft engine)

type DraftSessionEndedEvent struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	EndedAt   time.Time `json:"ended_at"`
	Timestamp time.Time `json:"timestamp"`
}
