package model

// RecoveryEntry is a ledger record for a single destroyed item awaiting
// restoration. Slot keys are dense-packed: the smallest unused
// non-negative integer for the owning user, reusable once vacated.
type RecoveryEntry struct {
	SlotKey     int          `json:"slot_key"`
	Item        ItemSnapshot `json:"item"`
	CreatedAt   int64        `json:"created_at"` // epoch millis
	Blacklisted bool         `json:"blacklisted"`
}

// RecoverableItem is the list-API projection of a ledger entry: the
// display copy carries the restoration-cost lore annotation, the
// fingerprint identifies the entry for restore/delete calls.
type RecoverableItem struct {
	Item        ItemSnapshot `json:"item"`
	Fingerprint string       `json:"fingerprint"`
	Cost        int          `json:"cost"`
	SlotKey     int          `json:"slot_key"`
	Blacklisted bool         `json:"blacklisted"`
}

// RecoveryEvent is an audit row written whenever an entry leaves the
// ledger through a user action.
type RecoveryEvent struct {
	ID         string `json:"id"`
	Action     string `json:"action"` // "restored" or "deleted"
	UserID     string `json:"user_id"`
	ItemType   string `json:"item_type"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	Cost       int    `json:"cost"`
	OccurredAt string `json:"occurred_at"`
}

// MirrorRecord is the optional remote-mirror row for a destruction
// event, pruned by the retention sweeper alongside the ledger.
type MirrorRecord struct {
	UserID     string       `json:"user_id"`
	Item       ItemSnapshot `json:"item"`
	BreakTime  int64        `json:"break_time"` // epoch millis
	ServerName string       `json:"server_name"`
	World      string       `json:"world"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Z          float64      `json:"z"`
}
