package paste

import (
	"fmt"
	"time"
)

// Kind classifies a record's content. Text is served as a raw body; Link
// holds a target URL and readers are redirected to it. Fixed at creation.
type Kind string

const (
	KindText Kind = "text"
	KindLink Kind = "link"
)

// ParseKind maps the wire value of the type parameter to a Kind.
// Empty defaults to text; "plain" is accepted as a legacy alias.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "plain", string(KindText):
		return KindText, nil
	case string(KindLink):
		return KindLink, nil
	default:
		return "", fmt.Errorf("unsupported paste type %q", s)
	}
}

// Record is the persisted unit. Content is stored separately from the
// metadata and is excluded from its JSON form.
type Record struct {
	ID           string       `json:"id"`
	Kind         Kind         `json:"kind"`
	Content      []byte       `json:"-"`
	Owner        *OwnerSecret `json:"owner,omitempty"`
	Size         int          `json:"size"`
	Views        uint64       `json:"views"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastViewedAt time.Time    `json:"last_viewed_at"`
}

// Entry is one row of the listing index: enough to enumerate and describe
// records without touching content bodies.
type Entry struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Size         int       `json:"size"`
	Views        uint64    `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// Entry projects the record onto its index row.
func (r *Record) Entry() Entry {
	return Entry{
		ID:           r.ID,
		Kind:         r.Kind,
		Size:         r.Size,
		Views:        r.Views,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastViewedAt: r.LastViewedAt,
	}
}
