package models

// Events exchanged with a player's connection.
const (
	EventReadyCheck       = "draftQueueReadyCheck"
	EventReadyCheckUpdate = "draftQueueReadyCheckUpdate"
	EventReadyCheckCancel = "draftQueueReadyCheckCancel"
	EventSetSession       = "setSession"
	EventRegister         = "draftQueueRegister"
	EventUnregister       = "draftQueueUnregister"
	EventSetReadyState    = "draftQueueSetReadyState"
	EventQueueStatus      = "draftQueueStatus"
	EventAck              = "ack"
)

type ReadyCheckMessage struct {
	QueueID  string              `json:"queueId"`
	Deadline string              `json:"deadline"`
	Table    []PlayerReadyStatus `json:"table"`
}

type ReadyCheckUpdateMessage struct {
	QueueID string              `json:"queueId"`
	Table   []PlayerReadyStatus `json:"table"`
}

type ReadyCheckCancelMessage struct {
	QueueID  string `json:"queueId"`
	Requeued bool   `json:"requeued"`
}

type SetSessionMessage struct {
	SessionID string `json:"sessionId"`
}
