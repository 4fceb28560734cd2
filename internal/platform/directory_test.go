package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	errors    []string
	successes []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func newDirectoryFixture(t *testing.T, handler http.HandlerFunc) (*Directory, *recordingNotifier) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	notifier := &recordingNotifier{}
	return NewDirectory(NewClient(srv.URL), notifier), notifier
}

func TestDirectoryToggleTenant(t *testing.T) {
	t.Run("successful toggle keeps the confirmed state", func(t *testing.T) {
		dir, notifier := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/platform/tenants":
				w.Write([]byte(`[{"id":"t1","slug":"acme","businessName":"Acme","isActive":true}]`))
			case "/platform/tenants/t1/toggle":
				w.Write([]byte(`{"id":"t1","slug":"acme","businessName":"Acme","isActive":false}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		_, err := dir.RefreshTenants(context.Background())
		require.NoError(t, err)

		updated, err := dir.ToggleTenant(context.Background(), "t1")
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		assert.False(t, dir.Tenants()[0].IsActive)
		assert.Empty(t, notifier.errors)
	})

	t.Run("failed toggle rolls back and notifies", func(t *testing.T) {
		dir, notifier := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/platform/tenants":
				w.Write([]byte(`[{"id":"t1","slug":"acme","businessName":"Acme","isActive":true}]`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"backend caído"}`))
			}
		})

		_, err := dir.RefreshTenants(context.Background())
		require.NoError(t, err)

		_, err = dir.ToggleTenant(context.Background(), "t1")
		require.Error(t, err)
		// pre-change value restored
		assert.True(t, dir.Tenants()[0].IsActive)
		assert.Len(t, notifier.errors, 1)
	})

	t.Run("unknown tenant is rejected locally", func(t *testing.T) {
		dir, _ := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})
		_, err := dir.ToggleTenant(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrNotInDirectory)
	})
}

func TestDirectoryToggleUser(t *testing.T) {
	t.Run("optimistic flip confirmed by backend", func(t *testing.T) {
		dir, _ := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/users":
				w.Write([]byte(`[{"id":"u1","email":"a@acme.io","fullname":"Ana","isActive":true}]`))
			case "/users/u1/status":
				w.Write([]byte(`{}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		_, err := dir.RefreshUsers(context.Background())
		require.NoError(t, err)

		updated, err := dir.ToggleUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})

	t.Run("rollback on backend failure", func(t *testing.T) {
		dir, notifier := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/users":
				w.Write([]byte(`[{"id":"u1","email":"a@acme.io","fullname":"Ana","isActive":false}]`))
			default:
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"rechazado"}`))
			}
		})

		_, err := dir.RefreshUsers(context.Background())
		require.NoError(t, err)

		_, err = dir.ToggleUser(context.Background(), "u1")
		require.Error(t, err)
		assert.False(t, dir.Users()[0].IsActive)
		assert.Len(t, notifier.errors, 1)
	})
}

func TestDirectoryRefreshFailureKeepsCache(t *testing.T) {
	calls := 0
	dir, _ := newDirectoryFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`[{"id":"t1","slug":"acme","businessName":"Acme","isActive":true}]`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"unavailable"}`))
	})

	_, err := dir.RefreshTenants(context.Background())
	require.NoError(t, err)

	stale, err := dir.RefreshTenants(context.Background())
	require.Error(t, err)
	// prior data stays visible instead of crashing the view
	assert.Len(t, stale, 1)
}
