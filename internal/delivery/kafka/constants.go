package kafka

const (
	TopicPlayerJoined       = "draftqueue.player.joined"
	TopicPlayerLeft         = "draftqueue.player.left"
	TopicReadyCheckStarted  = "draftqueue.readycheck.started"
	TopicReadyCheckResolved = "draftqueue.readycheck.resolved"
	TopicSessionLaunched    = "draftqueue.session.launched"

	TopicDraftSessionEnded = "draft.session.ended"
)

const (
	LeftReasonUnregistered = "unregistered"
	LeftReasonDisconnected = "disconnected"
)
