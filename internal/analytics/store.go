package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SavePasteSaved(ctx context.Context, event *PasteSavedEvent) error
	SavePasteViewed(ctx context.Context, event *PasteViewedEvent) error
	SavePasteDeleted(ctx context.Context, event *PasteDeletedEvent) error
}
