package handlers_test

import (
	"context"

	"github.com/serroba/pastebox/internal/paste"
)

const testTarget = "https://example.com"

// mockRepo is a test double for paste.Repository that can be configured to
// return errors.
type mockRepo struct {
	getForViewErr error
	putNewErr     error
	putUpdateErr  error
	statErr       error
	listErr       error
}

func (m *mockRepo) Get(_ context.Context, _ string) (*paste.Record, error) {
	return nil, paste.ErrNotFound
}

func (m *mockRepo) GetForView(_ context.Context, _ string) (*paste.Record, error) {
	if m.getForViewErr != nil {
		return nil, m.getForViewErr
	}

	return nil, paste.ErrNotFound
}

func (m *mockRepo) Stat(_ context.Context, _ string) (*paste.Entry, error) {
	if m.statErr != nil {
		return nil, m.statErr
	}

	return nil, paste.ErrNotFound
}

func (m *mockRepo) PutNew(_ context.Context, _ *paste.Record) error {
	return m.putNewErr
}

func (m *mockRepo) PutUpdate(_ context.Context, _ string, _ paste.UpdateFunc) error {
	if m.putUpdateErr != nil {
		return m.putUpdateErr
	}

	return paste.ErrNotFound
}

func (m *mockRepo) Delete(_ context.Context, _ string, _ paste.AuthorizeFunc) error {
	return paste.ErrNotFound
}

func (m *mockRepo) List(_ context.Context) ([]paste.Entry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return nil, nil
}
