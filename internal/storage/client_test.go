package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("Should upload object bytes to the bucket path", func(t *testing.T) {
		var gotMethod, gotPath, gotContentType, gotUpsert string
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotContentType = r.Header.Get("Content-Type")
			gotUpsert = r.Header.Get("x-upsert")
			gotBody, _ = io.ReadAll(r.Body)
			w.Write([]byte(`{"Key": "user-uploads/u1/c1/notes.txt"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		err := client.Store(context.Background(), "tok", "u1/c1/notes.txt",
			strings.NewReader("hello world"), "text/plain")

		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/object/user-uploads/u1/c1/notes.txt", gotPath)
		assert.Equal(t, "text/plain", gotContentType)
		assert.Equal(t, "false", gotUpsert, "Existing objects must not be overwritten")
		assert.Equal(t, "hello world", string(gotBody))
	})

	t.Run("Should surface store rejection as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error": {"code": "DUPLICATE", "message": "object already exists"}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		err := client.Store(context.Background(), "tok", "u1/c1/notes.txt",
			strings.NewReader("x"), "text/plain")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "object already exists")
	})

	t.Run("Should abort when the context is cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(server.URL)
		err := client.Store(ctx, "tok", "u1/c1/a.txt", strings.NewReader("x"), "text/plain")
		assert.Error(t, err)
	})
}

func TestRemove(t *testing.T) {
	t.Run("Should issue delete for the object path", func(t *testing.T) {
		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewBucketClient(server.URL, "scratch")
		err := client.Remove(context.Background(), "tok", "u1/c1/notes.txt")

		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/object/scratch/u1/c1/notes.txt", gotPath)
	})
}
