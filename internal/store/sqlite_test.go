package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"userdir/internal/domain/user"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(SQLiteConfig{
		Path:             ":memory:",
		SlowQuerySeconds: 0.2,
		LogLevel:         "silent",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_InsertAndGetAll(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	users := []user.User{
		{ID: 1, Email: "a@example.com", FirstName: "A", LastName: "One", Avatar: user.DefaultAvatar},
		{ID: 2, Email: "b@example.com", FirstName: "B", LastName: "Two", Avatar: user.DefaultAvatar},
	}
	require.NoError(t, s.InsertAll(ctx, users))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, users, got)
}

func TestSQLiteStore_InsertUpsertsByID(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, user.User{ID: 1, Email: "old@example.com", FirstName: "Old"}))
	require.NoError(t, s.Insert(ctx, user.User{ID: 1, Email: "new@example.com", FirstName: "New"}))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new@example.com", got[0].Email)
	assert.Equal(t, "New", got[0].FirstName)
}

func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	u := user.User{ID: 7, Email: "u@example.com", FirstName: "U", LastName: "Ser"}
	require.NoError(t, s.Insert(ctx, u))

	u.FirstName = "Updated"
	require.NoError(t, s.Update(ctx, u))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Updated", got[0].FirstName)

	require.NoError(t, s.Delete(ctx, u))
	got, err = s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_DeleteAll(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertAll(ctx, []user.User{
		{ID: 1, Email: "a@example.com"},
		{ID: 2, Email: "b@example.com"},
	}))
	require.NoError(t, s.DeleteAll(ctx))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_MaxID(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	maxID, err := s.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), maxID, "empty store reports 0")

	require.NoError(t, s.InsertAll(ctx, []user.User{
		{ID: 3, Email: "c@example.com"},
		{ID: 12, Email: "l@example.com"},
		{ID: 5, Email: "e@example.com"},
	}))

	maxID, err = s.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), maxID)
}

func TestSQLiteStore_CountWithEmail(t *testing.T) {
	s := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertAll(ctx, []user.User{
		{ID: 1, Email: "taken@example.com"},
		{ID: 2, Email: "other@example.com"},
	}))

	count, err := s.CountWithEmail(ctx, "taken@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// a record may keep its own email
	count, err = s.CountWithEmail(ctx, "taken@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = s.CountWithEmail(ctx, "free@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
