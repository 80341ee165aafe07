package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lexisync-desktop/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn(t *testing.T) {
	t.Run("Should resolve token against users/me and activate session", func(t *testing.T) {
		var gotAuth, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			w.Write([]byte(`{"id": "user-1", "email": "a@b.test", "display_name": "Alice"}`))
		}))
		defer server.Close()

		manager := NewManager(nil, api.NewClient(server.URL))
		session, err := manager.SignIn(context.Background(), "tok-123")

		require.NoError(t, err)
		assert.Equal(t, "Bearer tok-123", gotAuth)
		assert.Equal(t, "/users/me", gotPath)
		assert.Equal(t, "user-1", session.UserID)
		assert.Equal(t, "Alice", session.DisplayName)

		active, err := manager.Session()
		require.NoError(t, err)
		assert.Equal(t, "user-1", active.UserID)
		assert.Equal(t, "tok-123", active.AccessToken)
	})

	t.Run("Should reject empty token", func(t *testing.T) {
		manager := NewManager(nil, api.NewClient("http://localhost:1"))
		_, err := manager.SignIn(context.Background(), "")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("Should propagate typed API error for bad token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"code": "NO_SESSION", "message": "No active session"}}`))
		}))
		defer server.Close()

		manager := NewManager(nil, api.NewClient(server.URL))
		_, err := manager.SignIn(context.Background(), "expired")

		require.Error(t, err)
		apiErr, ok := err.(*api.Error)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "NO_SESSION", apiErr.Code)
	})

	t.Run("Should reject profile without id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email": "a@b.test"}`))
		}))
		defer server.Close()

		manager := NewManager(nil, api.NewClient(server.URL))
		_, err := manager.SignIn(context.Background(), "tok")
		assert.Error(t, err)
	})
}

func TestSession(t *testing.T) {
	t.Run("Should return ErrNotAuthenticated with no active session", func(t *testing.T) {
		manager := NewManager(nil, api.NewClient("http://localhost:1"))
		_, err := manager.Session()
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("Should return a copy of the session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "user-1"}`))
		}))
		defer server.Close()

		manager := NewManager(nil, api.NewClient(server.URL))
		_, err := manager.SignIn(context.Background(), "tok")
		require.NoError(t, err)

		first, err := manager.Session()
		require.NoError(t, err)
		first.UserID = "mutated"

		second, err := manager.Session()
		require.NoError(t, err)
		assert.Equal(t, "user-1", second.UserID, "Callers must not be able to mutate the shared session")
	})
}

func TestSignOut(t *testing.T) {
	t.Run("Should clear the active session", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "user-1"}`))
		}))
		defer server.Close()

		manager := NewManager(nil, api.NewClient(server.URL))
		_, err := manager.SignIn(context.Background(), "tok")
		require.NoError(t, err)

		require.NoError(t, manager.SignOut())

		_, err = manager.Session()
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestRestore(t *testing.T) {
	t.Run("Should return ErrNotAuthenticated without a database", func(t *testing.T) {
		manager := NewManager(nil, api.NewClient("http://localhost:1"))
		_, err := manager.Restore(context.Background())
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}
