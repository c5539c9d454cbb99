package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/pastebox/internal/paste"
)

// MemoryRepository is an in-memory paste.Repository: a lock around a map.
// It mirrors BoltRepository's semantics and backs tests and throwaway runs.
type MemoryRepository struct {
	mu   sync.RWMutex
	recs map[string]*paste.Record
}

// Compile-time check.
var _ paste.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{recs: make(map[string]*paste.Record)}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*paste.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, paste.ErrNotFound
	}

	return copyRecord(rec), nil
}

func (r *MemoryRepository) GetForView(_ context.Context, id string) (*paste.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, paste.ErrNotFound
	}

	rec.Views++
	rec.LastViewedAt = time.Now().UTC()

	return copyRecord(rec), nil
}

func (r *MemoryRepository) Stat(_ context.Context, id string) (*paste.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, paste.ErrNotFound
	}

	entry := rec.Entry()

	return &entry, nil
}

func (r *MemoryRepository) PutNew(_ context.Context, rec *paste.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; ok {
		return paste.ErrAlreadyExists
	}

	stored := copyRecord(rec)
	stored.Size = len(stored.Content)
	r.recs[rec.ID] = stored

	return nil
}

func (r *MemoryRepository) PutUpdate(_ context.Context, id string, fn paste.UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.recs[id]
	if !ok {
		return paste.ErrNotFound
	}

	updated := copyRecord(current)
	if err := fn(updated); err != nil {
		return err
	}

	// Whatever fn did, identity and history survive the update.
	updated.ID = current.ID
	updated.Kind = current.Kind
	updated.Owner = current.Owner
	updated.Views = current.Views
	updated.CreatedAt = current.CreatedAt
	updated.LastViewedAt = current.LastViewedAt
	updated.UpdatedAt = time.Now().UTC()
	updated.Size = len(updated.Content)

	r.recs[id] = updated

	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string, authorize paste.AuthorizeFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[id]
	if !ok {
		return paste.ErrNotFound
	}

	if err := authorize(copyRecord(rec)); err != nil {
		return err
	}

	delete(r.recs, id)

	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]paste.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]paste.Entry, 0, len(r.recs))
	for _, rec := range r.recs {
		entries = append(entries, rec.Entry())
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	return entries, nil
}

func copyRecord(rec *paste.Record) *paste.Record {
	dup := *rec
	dup.Content = make([]byte, len(rec.Content))
	copy(dup.Content, rec.Content)

	return &dup
}
