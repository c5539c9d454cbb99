package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/pastebox/internal/analytics"
)

// Postgres persists analytics events to PostgreSQL, one table per event type.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the event tables when they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS paste_saved_events (
			id UUID PRIMARY KEY,
			paste_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			size BIGINT NOT NULL,
			created BOOLEAN NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL,
			client_ip TEXT,
			user_agent TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS paste_viewed_events (
			id UUID PRIMARY KEY,
			paste_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			views BIGINT NOT NULL,
			viewed_at TIMESTAMPTZ NOT NULL,
			client_ip TEXT,
			user_agent TEXT,
			referrer TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS paste_deleted_events (
			id UUID PRIMARY KEY,
			paste_id TEXT NOT NULL,
			deleted_at TIMESTAMPTZ NOT NULL,
			client_ip TEXT,
			user_agent TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring analytics schema: %w", err)
		}
	}

	return nil
}

func (p *Postgres) SavePasteSaved(ctx context.Context, event *analytics.PasteSavedEvent) error {
	query := `
		INSERT INTO paste_saved_events (id, paste_id, kind, size, created, saved_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		uuid.New(),
		event.ID,
		event.Kind,
		event.Size,
		event.Created,
		event.SavedAt,
		event.ClientIP,
		event.UserAgent,
	)

	return err
}

func (p *Postgres) SavePasteViewed(ctx context.Context, event *analytics.PasteViewedEvent) error {
	query := `
		INSERT INTO paste_viewed_events (id, paste_id, kind, views, viewed_at, client_ip, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.pool.Exec(ctx, query,
		uuid.New(),
		event.ID,
		event.Kind,
		event.Views,
		event.ViewedAt,
		event.ClientIP,
		event.UserAgent,
		event.Referrer,
	)

	return err
}

func (p *Postgres) SavePasteDeleted(ctx context.Context, event *analytics.PasteDeletedEvent) error {
	query := `
		INSERT INTO paste_deleted_events (id, paste_id, deleted_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		uuid.New(),
		event.ID,
		event.DeletedAt,
		event.ClientIP,
		event.UserAgent,
	)

	return err
}
