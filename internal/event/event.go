package event

type Type string

const (
	TypeItemRecorded   Type = "item.recorded"
	TypeItemRestored   Type = "item.restored"
	TypeItemDeleted    Type = "item.deleted"
	TypeSweepCompleted Type = "sweep.completed"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	UserID    string      `json:"user_id,omitempty"` // Whose ledger the event concerns
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
