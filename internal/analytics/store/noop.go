package store

import (
	"context"

	"github.com/serroba/pastebox/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SavePasteSaved(_ context.Context, event *analytics.PasteSavedEvent) error {
	n.logger.Info("paste saved event received",
		zap.String("id", event.ID),
		zap.String("kind", event.Kind),
		zap.Int("size", event.Size),
		zap.Bool("created", event.Created),
		zap.Time("savedAt", event.SavedAt),
	)

	return nil
}

func (n *Noop) SavePasteViewed(_ context.Context, event *analytics.PasteViewedEvent) error {
	n.logger.Info("paste viewed event received",
		zap.String("id", event.ID),
		zap.Uint64("views", event.Views),
		zap.Time("viewedAt", event.ViewedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (n *Noop) SavePasteDeleted(_ context.Context, event *analytics.PasteDeletedEvent) error {
	n.logger.Info("paste deleted event received",
		zap.String("id", event.ID),
		zap.Time("deletedAt", event.DeletedAt),
	)

	return nil
}
