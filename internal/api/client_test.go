package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResponse(t *testing.T) {
	t.Run("Should return nil for successful responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"items": []}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Get(context.Background(), "token", "content-items", nil)

		require.NoError(t, err)
		assert.NoError(t, CheckResponse(resp))
	})

	t.Run("Should parse server error envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": "CONTENT_NOT_FOUND", "message": "content item does not exist"}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Get(context.Background(), "token", "content-items/abc", nil)
		require.NoError(t, err)

		err = CheckResponse(resp)
		require.Error(t, err)

		apiErr, ok := err.(*Error)
		require.True(t, ok, "Should be a typed *Error")
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "CONTENT_NOT_FOUND", apiErr.Code)
		assert.Equal(t, "content item does not exist", apiErr.Message)
	})

	t.Run("Should fall back to generic code when body is not an envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream exploded`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		resp, err := client.Get(context.Background(), "token", "content-items", nil)
		require.NoError(t, err)

		apiErr, ok := CheckResponse(resp).(*Error)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "UNKNOWN_ERROR", apiErr.Code)
		assert.Contains(t, apiErr.Message, "502")
	})
}

func TestClientAuth(t *testing.T) {
	t.Run("Should send bearer token on every request", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Get(context.Background(), "secret-token", "users/me", nil)

		require.NoError(t, err)
		assert.Equal(t, "Bearer secret-token", gotAuth)
	})
}

func TestClientTimeout(t *testing.T) {
	t.Run("Should fail once the configured timeout elapses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		client.SetTimeout(50 * time.Millisecond)

		_, err := client.Get(context.Background(), "token", "content-items", nil)
		assert.Error(t, err)
	})
}

func TestGetContentTitle(t *testing.T) {
	t.Run("Should cache titles after first lookup", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"title": "Beginner Podcast Ep. 4", "original_filename": "ep4.mp3"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		ctx := context.Background()

		assert.Equal(t, "Beginner Podcast Ep. 4", client.GetContentTitle(ctx, "t", "item-1"))
		assert.Equal(t, "Beginner Podcast Ep. 4", client.GetContentTitle(ctx, "t", "item-1"))
		assert.Equal(t, 1, calls, "Second lookup should hit the cache")
	})

	t.Run("Should fall back to filename then ID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"original_filename": "notes.txt"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		assert.Equal(t, "notes.txt", client.GetContentTitle(context.Background(), "t", "item-2"))
	})

	t.Run("Should return ID without caching on lookup failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		assert.Equal(t, "item-3", client.GetContentTitle(context.Background(), "t", "item-3"))
		assert.Equal(t, 0, client.titleCache.Len())
	})

	t.Run("Should drop cached title on invalidation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"title": "Old"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		client.GetContentTitle(context.Background(), "t", "item-4")
		require.Equal(t, 1, client.titleCache.Len())

		client.InvalidateTitle("item-4")
		assert.Equal(t, 0, client.titleCache.Len())
	})
}

func TestLRUCache(t *testing.T) {
	t.Run("Should evict least recently used entry at capacity", func(t *testing.T) {
		cache := newLRUCache(2)
		cache.Put("a", "1")
		cache.Put("b", "2")

		// Touch "a" so "b" becomes the eviction candidate
		_, _ = cache.Get("a")
		cache.Put("c", "3")

		_, hasA := cache.Get("a")
		_, hasB := cache.Get("b")
		_, hasC := cache.Get("c")

		assert.True(t, hasA)
		assert.False(t, hasB, "Least recently used entry should be evicted")
		assert.True(t, hasC)
	})

	t.Run("Should update existing keys in place", func(t *testing.T) {
		cache := newLRUCache(2)
		cache.Put("a", "1")
		cache.Put("a", "2")

		value, ok := cache.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "2", value)
		assert.Equal(t, 1, cache.Len())
	})
}
