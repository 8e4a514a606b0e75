package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/store"
)

// NewTestStore creates a SQLite store in a temporary directory with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStore(t testing.TB) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "toodoo.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestUser inserts an account with a random email and returns it.
func NewTestUser(t testing.TB, s store.Store) model.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), model.User{
		Email: uuid.New().String() + "@example.com",
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return u
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
