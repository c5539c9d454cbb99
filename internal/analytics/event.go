package analytics

import "time"

// Topics carrying paste lifecycle events.
const (
	TopicPasteSaved   = "paste.saved"
	TopicPasteViewed  = "paste.viewed"
	TopicPasteDeleted = "paste.deleted"
)

// PasteSavedEvent is emitted when a paste is created or overwritten.
type PasteSavedEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Size      int       `json:"size"`
	Created   bool      `json:"created"`
	SavedAt   time.Time `json:"savedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// PasteViewedEvent is emitted when a paste body is served.
type PasteViewedEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Views     uint64    `json:"views"`
	ViewedAt  time.Time `json:"viewedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
}

// PasteDeletedEvent is emitted when a paste is removed.
type PasteDeletedEvent struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}
