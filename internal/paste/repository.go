package paste

import "context"

// UpdateFunc mutates a record inside a repository transaction. Returning an
// error aborts the transaction and leaves the record untouched.
type UpdateFunc func(rec *Record) error

// AuthorizeFunc inspects a record inside a repository transaction before a
// destructive operation proceeds. The record is passed without content.
type AuthorizeFunc func(rec *Record) error

// Repository is the durable, transactional record storage. All operations
// are atomic; operations on the same id are serialized by the backing
// store's transaction isolation.
type Repository interface {
	// Get returns the record without touching view statistics.
	Get(ctx context.Context, id string) (*Record, error)

	// GetForView returns the record and advances Views and LastViewedAt in
	// the same transaction, so no reader can observe a count that does not
	// match the content it was served.
	GetForView(ctx context.Context, id string) (*Record, error)

	// Stat returns the index entry for id without loading content.
	Stat(ctx context.Context, id string) (*Entry, error)

	// PutNew inserts a record only if the id is absent; it never overwrites.
	// Returns ErrAlreadyExists when the id is taken.
	PutNew(ctx context.Context, rec *Record) error

	// PutUpdate applies fn to the stored record inside a single transaction.
	// Existence is re-checked within the transaction; ErrNotFound when the
	// id is absent. Kind, CreatedAt, Owner, Views and LastViewedAt are
	// preserved no matter what fn does; UpdatedAt and Size are advanced on
	// success.
	PutUpdate(ctx context.Context, id string, fn UpdateFunc) error

	// Delete removes the record after authorize passes, all in one
	// transaction. ErrNotFound when the id is absent.
	Delete(ctx context.Context, id string, authorize AuthorizeFunc) error

	// List returns the index entries for every live record, snapshot
	// consistent as of the call.
	List(ctx context.Context) ([]Entry, error)
}
