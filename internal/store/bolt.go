package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/pastebox/internal/paste"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketMeta    = []byte("meta")
	bucketContent = []byte("content")
)

// BoltRepository keeps records in a single bbolt database file: metadata as
// JSON in the meta bucket, bodies as raw bytes in the content bucket, both
// keyed by id. Every operation runs in one serializable transaction, which
// is what makes the view counter and the listing snapshot trustworthy.
type BoltRepository struct {
	db *bolt.DB
}

// Compile-time check.
var _ paste.Repository = (*BoltRepository)(nil)

// NewBoltRepository opens (or creates) the database file and ensures the
// buckets exist.
func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening paste database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(bucketContent)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("preparing paste database: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

// Ping verifies the database file is still usable.
func (r *BoltRepository) Ping(_ context.Context) error {
	return r.db.View(func(_ *bolt.Tx) error { return nil })
}

// Shutdown closes the database file.
func (r *BoltRepository) Shutdown() error {
	return r.db.Close()
}

func (r *BoltRepository) Get(_ context.Context, id string) (*paste.Record, error) {
	var rec *paste.Record

	err := r.db.View(func(tx *bolt.Tx) error {
		loaded, err := loadRecord(tx, id)
		if err != nil {
			return err
		}

		rec = loaded

		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return rec, nil
}

func (r *BoltRepository) GetForView(_ context.Context, id string) (*paste.Record, error) {
	var rec *paste.Record

	err := r.db.Update(func(tx *bolt.Tx) error {
		loaded, err := loadRecord(tx, id)
		if err != nil {
			return err
		}

		loaded.Views++
		loaded.LastViewedAt = time.Now().UTC()

		if err := saveRecord(tx, loaded); err != nil {
			return err
		}

		rec = loaded

		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return rec, nil
}

func (r *BoltRepository) Stat(_ context.Context, id string) (*paste.Entry, error) {
	var entry *paste.Entry

	err := r.db.View(func(tx *bolt.Tx) error {
		rec, err := loadMeta(tx, id)
		if err != nil {
			return err
		}

		e := rec.Entry()
		entry = &e

		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return entry, nil
}

func (r *BoltRepository) PutNew(_ context.Context, rec *paste.Record) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketMeta).Get([]byte(rec.ID)) != nil {
			return paste.ErrAlreadyExists
		}

		return saveRecord(tx, rec)
	})

	return storageErr(err)
}

func (r *BoltRepository) PutUpdate(_ context.Context, id string, fn paste.UpdateFunc) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		current, err := loadRecord(tx, id)
		if err != nil {
			return err
		}

		updated := *current
		if err := fn(&updated); err != nil {
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

		return saveRecord(tx, &updated)
	})

	return storageErr(err)
}

func (r *BoltRepository) Delete(_ context.Context, id string, authorize paste.AuthorizeFunc) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		rec, err := loadMeta(tx, id)
		if err != nil {
			return err
		}

		if err := authorize(rec); err != nil {
			return err
		}

		if err := tx.Bucket(bucketMeta).Delete([]byte(id)); err != nil {
			return err
		}

		return tx.Bucket(bucketContent).Delete([]byte(id))
	})

	return storageErr(err)
}

func (r *BoltRepository) List(_ context.Context) ([]paste.Entry, error) {
	var entries []paste.Entry

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			var rec paste.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding record %q: %w", k, err)
			}

			entries = append(entries, rec.Entry())

			return nil
		})
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return entries, nil
}

// loadMeta reads and decodes a record's metadata; content stays unloaded.
func loadMeta(tx *bolt.Tx, id string) (*paste.Record, error) {
	raw := tx.Bucket(bucketMeta).Get([]byte(id))
	if raw == nil {
		return nil, paste.ErrNotFound
	}

	var rec paste.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding record %q: %w", id, err)
	}

	return &rec, nil
}

// loadRecord reads metadata plus content. The content bytes are copied out
// because bbolt slices are only valid inside the transaction.
func loadRecord(tx *bolt.Tx, id string) (*paste.Record, error) {
	rec, err := loadMeta(tx, id)
	if err != nil {
		return nil, err
	}

	body := tx.Bucket(bucketContent).Get([]byte(id))
	rec.Content = make([]byte, len(body))
	copy(rec.Content, body)

	return rec, nil
}

func saveRecord(tx *bolt.Tx, rec *paste.Record) error {
	rec.Size = len(rec.Content)

	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %q: %w", rec.ID, err)
	}

	if err := tx.Bucket(bucketMeta).Put([]byte(rec.ID), meta); err != nil {
		return err
	}

	return tx.Bucket(bucketContent).Put([]byte(rec.ID), rec.Content)
}

// storageErr lets domain errors out of a transaction untouched and labels
// everything else as a storage fault.
func storageErr(err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		paste.ErrNotFound,
		paste.ErrAlreadyExists,
		paste.ErrForbidden,
		paste.ErrConflict,
		paste.ErrTooLarge,
		paste.ErrUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", paste.ErrUnavailable, err)
}
