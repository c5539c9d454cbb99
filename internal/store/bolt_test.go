package store_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/serroba/pastebox/internal/paste"
	"github.com/serroba/pastebox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoltRepo(t *testing.T) *store.BoltRepository {
	t.Helper()

	repo, err := store.NewBoltRepository(filepath.Join(t.TempDir(), "pastes.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = repo.Shutdown() })

	return repo
}

func testRecord(id, content string) *paste.Record {
	now := time.Now().UTC()

	return &paste.Record{
		ID:           id,
		Kind:         paste.KindText,
		Content:      []byte(content),
		Size:         len(content),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastViewedAt: now,
	}
}

func TestBoltRepository_PutNewAndGet(t *testing.T) {
	t.Run("stores and returns a record", func(t *testing.T) {
		repo := newBoltRepo(t)

		err := repo.PutNew(context.Background(), testRecord("abc", "hello"))
		require.NoError(t, err)

		rec, err := repo.Get(context.Background(), "abc")

		require.NoError(t, err)
		assert.Equal(t, "abc", rec.ID)
		assert.Equal(t, []byte("hello"), rec.Content)
		assert.Equal(t, len("hello"), rec.Size)
		assert.Equal(t, uint64(0), rec.Views)
	})

	t.Run("refuses to overwrite an existing id", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "first")))

		err := repo.PutNew(context.Background(), testRecord("abc", "second"))

		assert.ErrorIs(t, err, paste.ErrAlreadyExists)

		rec, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), rec.Content)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		repo := newBoltRepo(t)

		_, err := repo.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, paste.ErrNotFound)
	})

	t.Run("get does not touch statistics", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		_, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)

		rec, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), rec.Views)
	})
}

func TestBoltRepository_GetForView(t *testing.T) {
	t.Run("returns the count matching the served content", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		rec, err := repo.GetForView(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), rec.Views)

		rec, err = repo.GetForView(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, uint64(2), rec.Views)
	})

	t.Run("advances the last viewed time", func(t *testing.T) {
		repo := newBoltRepo(t)

		original := testRecord("abc", "x")
		require.NoError(t, repo.PutNew(context.Background(), original))

		rec, err := repo.GetForView(context.Background(), "abc")

		require.NoError(t, err)
		assert.False(t, rec.LastViewedAt.Before(original.LastViewedAt))
	})

	t.Run("concurrent views are counted exactly", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		var wg sync.WaitGroup

		for range 50 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, _ = repo.GetForView(context.Background(), "abc")
			}()
		}

		wg.Wait()

		entry, err := repo.Stat(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, uint64(50), entry.Views)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		repo := newBoltRepo(t)

		_, err := repo.GetForView(context.Background(), "missing")

		assert.ErrorIs(t, err, paste.ErrNotFound)
	})
}

func TestBoltRepository_PutUpdate(t *testing.T) {
	t.Run("applies the mutation", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "v1")))

		err := repo.PutUpdate(context.Background(), "abc", func(rec *paste.Record) error {
			rec.Content = []byte("v2")

			return nil
		})
		require.NoError(t, err)

		rec, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), rec.Content)
		assert.Equal(t, 2, rec.Size)
	})

	t.Run("preserves identity and history no matter what the mutation does", func(t *testing.T) {
		repo := newBoltRepo(t)

		original := testRecord("abc", "v1")
		original.Views = 7
		require.NoError(t, repo.PutNew(context.Background(), original))

		err := repo.PutUpdate(context.Background(), "abc", func(rec *paste.Record) error {
			rec.ID = "evil"
			rec.Kind = paste.KindLink
			rec.Views = 9999
			rec.CreatedAt = time.Time{}
			rec.Content = []byte("v2")

			return nil
		})
		require.NoError(t, err)

		rec, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", rec.ID)
		assert.Equal(t, paste.KindText, rec.Kind)
		assert.Equal(t, uint64(7), rec.Views)
		assert.Equal(t, original.CreatedAt.Unix(), rec.CreatedAt.Unix())
		assert.Equal(t, []byte("v2"), rec.Content)
	})

	t.Run("aborts when the mutation fails", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "v1")))

		err := repo.PutUpdate(context.Background(), "abc", func(rec *paste.Record) error {
			rec.Content = []byte("v2")

			return paste.ErrForbidden
		})

		assert.ErrorIs(t, err, paste.ErrForbidden)

		rec, err := repo.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), rec.Content)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		repo := newBoltRepo(t)

		err := repo.PutUpdate(context.Background(), "missing", func(*paste.Record) error { return nil })

		assert.ErrorIs(t, err, paste.ErrNotFound)
	})
}

func TestBoltRepository_Delete(t *testing.T) {
	t.Run("removes the record", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		err := repo.Delete(context.Background(), "abc", func(*paste.Record) error { return nil })
		require.NoError(t, err)

		_, err = repo.Get(context.Background(), "abc")
		assert.ErrorIs(t, err, paste.ErrNotFound)
	})

	t.Run("aborts when authorization fails", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		err := repo.Delete(context.Background(), "abc", func(*paste.Record) error { return paste.ErrForbidden })

		assert.ErrorIs(t, err, paste.ErrForbidden)

		_, err = repo.Get(context.Background(), "abc")
		assert.NoError(t, err)
	})

	t.Run("hands the stored record to the authorizer", func(t *testing.T) {
		repo := newBoltRepo(t)

		rec := testRecord("abc", "x")
		rec.Owner = &paste.OwnerSecret{Salt: []byte("salt"), Hash: []byte("hash")}
		require.NoError(t, repo.PutNew(context.Background(), rec))

		var seen *paste.OwnerSecret

		err := repo.Delete(context.Background(), "abc", func(stored *paste.Record) error {
			seen = stored.Owner

			return nil
		})

		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.Equal(t, []byte("salt"), seen.Salt)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		repo := newBoltRepo(t)

		err := repo.Delete(context.Background(), "missing", func(*paste.Record) error { return nil })

		assert.ErrorIs(t, err, paste.ErrNotFound)
	})
}

func TestBoltRepository_StatAndList(t *testing.T) {
	t.Run("stat reports metadata without a view", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "hello")))

		entry, err := repo.Stat(context.Background(), "abc")

		require.NoError(t, err)
		assert.Equal(t, "abc", entry.ID)
		assert.Equal(t, len("hello"), entry.Size)
		assert.Equal(t, uint64(0), entry.Views)
	})

	t.Run("stat returns not found for an unknown id", func(t *testing.T) {
		repo := newBoltRepo(t)

		_, err := repo.Stat(context.Background(), "missing")

		assert.ErrorIs(t, err, paste.ErrNotFound)
	})

	t.Run("list returns every record in id order", func(t *testing.T) {
		repo := newBoltRepo(t)

		for _, id := range []string{"charlie", "alpha", "bravo"} {
			require.NoError(t, repo.PutNew(context.Background(), testRecord(id, "content")))
		}

		entries, err := repo.List(context.Background())

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "alpha", entries[0].ID)
		assert.Equal(t, "bravo", entries[1].ID)
		assert.Equal(t, "charlie", entries[2].ID)
	})

	t.Run("list of an empty repository is empty", func(t *testing.T) {
		repo := newBoltRepo(t)

		entries, err := repo.List(context.Background())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("list snapshots stay consistent under concurrent churn", func(t *testing.T) {
		repo := newBoltRepo(t)

		for i := range 10 {
			require.NoError(t, repo.PutNew(context.Background(), testRecord(fmt.Sprintf("seed-%02d", i), "keep")))
		}

		stop := make(chan struct{})

		var wg sync.WaitGroup

		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}

				id := fmt.Sprintf("churn-%02d", i%10)
				_ = repo.PutNew(context.Background(), testRecord(id, "transient"))
				_ = repo.Delete(context.Background(), id, func(*paste.Record) error { return nil })
			}
		}()

		for range 20 {
			entries, err := repo.List(context.Background())
			require.NoError(t, err)

			seen := make(map[string]bool, len(entries))

			for _, entry := range entries {
				assert.False(t, seen[entry.ID], "id %s listed twice in one snapshot", entry.ID)
				seen[entry.ID] = true
				assert.NotEmpty(t, entry.Kind)
				assert.False(t, entry.CreatedAt.IsZero())
			}

			for i := range 10 {
				assert.True(t, seen[fmt.Sprintf("seed-%02d", i)], "live record missing from the snapshot")
			}
		}

		close(stop)
		wg.Wait()
	})
}

func TestBoltRepository_Persistence(t *testing.T) {
	t.Run("records survive a reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pastes.db")

		repo, err := store.NewBoltRepository(path)
		require.NoError(t, err)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "durable")))

		_, err = repo.GetForView(context.Background(), "abc")
		require.NoError(t, err)

		require.NoError(t, repo.Shutdown())

		reopened, err := store.NewBoltRepository(path)
		require.NoError(t, err)

		defer func() { _ = reopened.Shutdown() }()

		rec, err := reopened.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("durable"), rec.Content)
		assert.Equal(t, uint64(1), rec.Views)
	})

	t.Run("ping fails after shutdown", func(t *testing.T) {
		repo, err := store.NewBoltRepository(filepath.Join(t.TempDir(), "pastes.db"))
		require.NoError(t, err)

		require.NoError(t, repo.Ping(context.Background()))
		require.NoError(t, repo.Shutdown())

		assert.Error(t, repo.Ping(context.Background()))
	})
}

func TestBoltRepository_StorageFaults(t *testing.T) {
	t.Run("wraps non-domain transaction failures as unavailable", func(t *testing.T) {
		repo := newBoltRepo(t)

		require.NoError(t, repo.PutNew(context.Background(), testRecord("abc", "x")))

		err := repo.PutUpdate(context.Background(), "abc", func(*paste.Record) error {
			return errors.New("callback blew up")
		})

		assert.ErrorIs(t, err, paste.ErrUnavailable)
		assert.ErrorContains(t, err, "callback blew up")
	})
}
