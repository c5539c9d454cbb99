package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/pastebox/internal/analytics"
	"github.com/serroba/pastebox/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewNoop(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	assert.NotNil(t, noop)
}

func TestNoop_SavePasteSaved(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	event := &analytics.PasteSavedEvent{
		ID:      "j4yNBLFv",
		Kind:    "text",
		Size:    42,
		Created: true,
		SavedAt: time.Now(),
	}

	err := noop.SavePasteSaved(context.Background(), event)

	require.NoError(t, err)
}

func TestNoop_SavePasteViewed(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	event := &analytics.PasteViewedEvent{
		ID:        "j4yNBLFv",
		Kind:      "text",
		Views:     7,
		ViewedAt:  time.Now(),
		ClientIP:  "127.0.0.1",
		UserAgent: "TestAgent/1.0",
		Referrer:  "https://referrer.com",
	}

	err := noop.SavePasteViewed(context.Background(), event)

	require.NoError(t, err)
}

func TestNoop_SavePasteDeleted(t *testing.T) {
	logger := zap.NewNop()
	noop := store.NewNoop(logger)

	event := &analytics.PasteDeletedEvent{
		ID:        "j4yNBLFv",
		DeletedAt: time.Now(),
		ClientIP:  "127.0.0.1",
	}

	err := noop.SavePasteDeleted(context.Background(), event)

	require.NoError(t, err)
}
