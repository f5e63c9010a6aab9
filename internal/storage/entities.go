package storage

import "time"

// Preference is one persisted client setting, such as the session token.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// ReadMark records the newest message seen in a chat room or ticket thread.
type ReadMark struct {
	Kind          string
	ThreadID      int64
	LastMessageID int64
	UpdatedAt     time.Time
}

const (
	ThreadChat   = "chat"
	ThreadTicket = "ticket"
)

type PreferenceListFilter struct {
	Prefix string
	Limit  int
	Offset int
}
