package paste

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultIDAttempts bounds the id generation retry loop and the
// create/update race loop for explicit ids.
const DefaultIDAttempts = 5

// Config carries the store's immutable construction-time settings.
type Config struct {
	// AccessCredential guards writes, deletes and listing. Empty disables
	// the service-wide check.
	AccessCredential string

	// IDAttempts bounds the retry loops; zero means DefaultIDAttempts.
	IDAttempts int

	// MaxTextBytes and MaxLinkBytes are the per-kind content ceilings.
	MaxTextBytes int
	MaxLinkBytes int
}

func (c Config) validate() error {
	if c.MaxTextBytes <= 0 {
		return fmt.Errorf("max text bytes must be positive, got %d", c.MaxTextBytes)
	}

	if c.MaxLinkBytes <= 0 {
		return fmt.Errorf("max link bytes must be positive, got %d", c.MaxLinkBytes)
	}

	if c.IDAttempts < 0 {
		return fmt.Errorf("id attempts must not be negative, got %d", c.IDAttempts)
	}

	return nil
}

// Store owns record identity, authorization, size limits and statistics.
// It composes the repository, guard, size policy and id generator into the
// operations an HTTP layer calls; every operation maps to exactly one
// repository transaction.
type Store struct {
	repo     Repository
	guard    *Guard
	policy   SizePolicy
	generate IDGenerator
	attempts int
}

// NewStore builds a store over the repository with the given id generator
// and validated configuration.
func NewStore(repo Repository, generate IDGenerator, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	attempts := cfg.IDAttempts
	if attempts == 0 {
		attempts = DefaultIDAttempts
	}

	return &Store{
		repo:     repo,
		guard:    NewGuard(cfg.AccessCredential),
		policy:   SizePolicy{MaxTextBytes: cfg.MaxTextBytes, MaxLinkBytes: cfg.MaxLinkBytes},
		generate: generate,
		attempts: attempts,
	}, nil
}

// SaveRequest describes a create-or-update operation.
type SaveRequest struct {
	ID        string // empty requests a generated id
	Kind      Kind
	Content   []byte
	AccessKey string // supplied service credential
	OwnerKey  string // supplied owner credential; empty means none
}

// SaveResult carries the resolved id of a successful save.
type SaveResult struct {
	ID      string
	Created bool
}

// Save creates or updates a record. Without an id it generates one,
// retrying collisions up to the attempt budget. With an explicit id it
// updates the existing record (owner credential permitting) or creates it
// fresh, attaching the supplied owner credential.
func (s *Store) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if err := s.guard.AuthorizeAccess(req.AccessKey); err != nil {
		return nil, err
	}

	if req.ID == "" {
		return s.create(ctx, req)
	}

	return s.upsert(ctx, req)
}

func (s *Store) create(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if err := s.policy.Check(req.Kind, len(req.Content)); err != nil {
		return nil, err
	}

	owner, err := deriveOwner(req.OwnerKey)
	if err != nil {
		return nil, err
	}

	for i := 0; i < s.attempts; i++ {
		rec := newRecord(s.generate(), req.Kind, req.Content, owner)

		err := s.repo.PutNew(ctx, rec)
		if errors.Is(err, ErrAlreadyExists) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return &SaveResult{ID: rec.ID, Created: true}, nil
	}

	return nil, ErrExhausted
}

func (s *Store) upsert(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	var owner *OwnerSecret // derived only if a create turns out to be needed

	for i := 0; i < s.attempts; i++ {
		err := s.repo.PutUpdate(ctx, req.ID, func(rec *Record) error {
			if err := s.guard.AuthorizeOwner(rec.Owner, req.OwnerKey); err != nil {
				return err
			}

			if rec.Kind != req.Kind {
				return ErrConflict
			}

			if err := s.policy.Check(req.Kind, len(req.Content)); err != nil {
				return err
			}

			rec.Content = req.Content

			return nil
		})
		if err == nil {
			return &SaveResult{ID: req.ID}, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		// The id is free: create it, attaching any supplied owner credential.
		if err := s.policy.Check(req.Kind, len(req.Content)); err != nil {
			return nil, err
		}

		if owner == nil && req.OwnerKey != "" {
			if owner, err = DeriveOwnerSecret(req.OwnerKey); err != nil {
				return nil, err
			}
		}

		err = s.repo.PutNew(ctx, newRecord(req.ID, req.Kind, req.Content, owner))
		if err == nil {
			return &SaveResult{ID: req.ID, Created: true}, nil
		}

		if !errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		// Lost the create race; take another pass at updating.
	}

	return nil, fmt.Errorf("%w: create/update race on %q did not settle", ErrUnavailable, req.ID)
}

// Read returns the record and counts the view. Public: no credentials.
func (s *Store) Read(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetForView(ctx, id)
}

// Stats returns the record's index entry without counting a view. Public.
func (s *Store) Stats(ctx context.Context, id string) (*Entry, error) {
	return s.repo.Stat(ctx, id)
}

// Delete removes the record. Requires the service credential and, when the
// record carries an owner secret, a matching owner credential.
func (s *Store) Delete(ctx context.Context, id, accessKey, ownerKey string) error {
	if err := s.guard.AuthorizeAccess(accessKey); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, func(rec *Record) error {
		return s.guard.AuthorizeOwner(rec.Owner, ownerKey)
	})
}

// List returns the full index snapshot. Requires the service credential.
func (s *Store) List(ctx context.Context, accessKey string) ([]Entry, error) {
	if err := s.guard.AuthorizeAccess(accessKey); err != nil {
		return nil, err
	}

	return s.repo.List(ctx)
}

func newRecord(id string, kind Kind, content []byte, owner *OwnerSecret) *Record {
	now := time.Now().UTC()

	return &Record{
		ID:           id,
		Kind:         kind,
		Content:      content,
		Owner:        owner,
		Size:         len(content),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastViewedAt: now,
	}
}

func deriveOwner(key string) (*OwnerSecret, error) {
	if key == "" {
		return nil, nil
	}

	return DeriveOwnerSecret(key)
}
