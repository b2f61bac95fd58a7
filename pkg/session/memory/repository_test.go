package sessionmemory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/login-gateway/internal/serviceerr"
	"github.com/openkcm/login-gateway/pkg/session"
	sessionmemory "github.com/openkcm/login-gateway/pkg/session/memory"
)

func TestRepository_StoreAndLoad(t *testing.T) {
	r := sessionmemory.NewRepository(time.Minute)

	want := session.Session{
		ID:           "session-id",
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Expiry:       time.Now().Add(time.Hour),
	}

	require.NoError(t, r.StoreSession(t.Context(), want))

	got, err := r.LoadSession(t.Context(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.AccessToken = "access-token-new"
	require.NoError(t, r.StoreSession(t.Context(), want))

	got, err = r.LoadSession(t.Context(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-token-new", got.AccessToken)
}

func TestRepository_LoadSession_NotFound(t *testing.T) {
	r := sessionmemory.NewRepository(time.Minute)

	_, err := r.LoadSession(t.Context(), "does-not-exist")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_StoreSession_Expired(t *testing.T) {
	r := sessionmemory.NewRepository(time.Minute)

	err := r.StoreSession(t.Context(), session.Session{ID: "expired", Expiry: time.Now().Add(-time.Second)})
	require.Error(t, err)

	_, err = r.LoadSession(t.Context(), "expired")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRepository_DeleteExpired(t *testing.T) {
	r := sessionmemory.NewRepository(time.Hour)

	require.NoError(t, r.StoreSession(t.Context(), session.Session{ID: "short", Expiry: time.Now().Add(50 * time.Millisecond)}))
	require.NoError(t, r.StoreSession(t.Context(), session.Session{ID: "long", Expiry: time.Now().Add(time.Hour)}))

	time.Sleep(100 * time.Millisecond)

	n, err := r.DeleteExpired(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.LoadSession(t.Context(), "long")
	assert.NoError(t, err)
}

func TestRepository_DeleteSession(t *testing.T) {
	r := sessionmemory.NewRepository(time.Minute)

	require.NoError(t, r.StoreSession(t.Context(), session.Session{ID: "to-delete", Expiry: time.Now().Add(time.Hour)}))
	require.NoError(t, r.DeleteSession(t.Context(), "to-delete"))
	require.NoError(t, r.DeleteSession(t.Context(), "never-existed"))

	_, err := r.LoadSession(t.Context(), "to-delete")
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}
