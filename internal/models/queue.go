package models

import "time"

type QueueSettings struct {
	// PickedCardsPerRound overrides the session default when positive.
	PickedCardsPerRound int `json:"picked_cards_per_round,omitempty"`
}

type QueueDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PlayerCount int            `json:"player_count"`
	SetCode     string         `json:"set_code"`
	Settings    *QueueSettings `json:"settings,omitempty"`
}

type ReadyState string

const (
	ReadyStateUnknown  ReadyState = "Unknown"
	ReadyStateReady    ReadyState = "Ready"
	ReadyStateNotReady ReadyState = "NotReady"
)

func (s ReadyState) Valid() bool {
	switch s {
	case ReadyStateUnknown, ReadyStateReady, ReadyStateNotReady:
		return true
	}
	return false
}

// PlayerReadyStatus is one row of a ready-check table as shown to candidates.
// Player identities are not disclosed to other candidates.
type PlayerReadyStatus struct {
	Status ReadyState `json:"status"`
}

type QueueOccupancy struct {
	Set     string `json:"set"`
	InQueue int    `json:"in_queue"`
	Playing int    `json:"playing"`
}

type QueueStatus struct {
	Playing     int                       `json:"playing"`
	Queues      map[string]QueueOccupancy `json:"queues"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
