package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"userdir/internal/domain/user"
	"userdir/internal/stub"
	apperrors "userdir/pkg/errors"
)

func setupClient(t *testing.T, seed int) (*Client, *httptest.Server) {
	srv := httptest.NewServer(stub.New(stub.Seed(seed), zaptest.NewLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", zaptest.NewLogger(t)), srv
}

func TestListUsers_Pagination(t *testing.T) {
	c, _ := setupClient(t, 8)
	ctx := context.Background()

	page1, err := c.ListUsers(ctx, 1, 6)
	require.NoError(t, err)
	require.Len(t, page1, 6)
	assert.Equal(t, int64(1), page1[0].ID)

	// the short page signals the end of the collection
	page2, err := c.ListUsers(ctx, 2, 6)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	page3, err := c.ListUsers(ctx, 3, 6)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestCreateUser_ServerAssignsNoID(t *testing.T) {
	c, _ := setupClient(t, 0)
	ctx := context.Background()

	created, err := c.CreateUser(ctx, user.User{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "User",
		Avatar:    user.DefaultAvatar,
	})
	require.NoError(t, err)
	assert.Zero(t, created.ID)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, "New", created.FirstName)
}

func TestUpdateUser_ReturnsOnlyConfirmedFields(t *testing.T) {
	c, _ := setupClient(t, 3)
	ctx := context.Background()

	confirmed, err := c.UpdateUser(ctx, 2, user.User{
		ID:        2,
		Email:     "edited@example.com",
		FirstName: "Edited",
		LastName:  "Person",
		Avatar:    "https://example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited", confirmed.FirstName)
	assert.Equal(t, "Person", confirmed.LastName)
	assert.Equal(t, "edited@example.com", confirmed.Email)
	assert.Zero(t, confirmed.ID)
	assert.Empty(t, confirmed.Avatar)
}

func TestDeleteUser_Success(t *testing.T) {
	c, _ := setupClient(t, 3)
	ctx := context.Background()

	require.NoError(t, c.DeleteUser(ctx, 2))

	remaining, err := c.ListUsers(ctx, 1, 6)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestClient_ServerErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, zaptest.NewLogger(t))
	_, err := c.ListUsers(context.Background(), 1, 6)

	require.Error(t, err)
	assert.True(t, apperrors.IsServer(err))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_TransportErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, zaptest.NewLogger(t))
	_, err := c.ListUsers(context.Background(), 1, 6)

	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_UpdateServerErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, zaptest.NewLogger(t))
	_, err := c.UpdateUser(context.Background(), 99, user.User{ID: 99})

	require.Error(t, err)
	assert.True(t, apperrors.IsServer(err))
	assert.Contains(t, err.Error(), "Not Found")
}
