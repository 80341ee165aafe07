// Package storage talks to the binary object store that holds raw user
// uploads. Objects are keyed {userID}/{contentID}/{filename}; the
// backend pipeline reads them from the same bucket after hand-off.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"lexisync-desktop/internal/api"

	"github.com/go-resty/resty/v2"
)

const defaultBucket = "user-uploads"

// Client is a bucket-scoped object store client.
type Client struct {
	baseURL string
	bucket  string
	http    *resty.Client
}

// NewClient creates an object store client for the default bucket.
func NewClient(baseURL string) *Client {
	return NewBucketClient(baseURL, defaultBucket)
}

// NewBucketClient creates an object store client for a specific bucket.
func NewBucketClient(baseURL, bucket string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		http: resty.New().
			// Large media files over slow links; the per-entry cancel
			// token is the real abort mechanism.
			SetTimeout(30 * time.Minute),
	}
}

// Store uploads an object to the given path. Existing objects are not
// overwritten; a duplicate path is a transfer failure.
func (c *Client) Store(ctx context.Context, token, path string, body io.Reader, contentType string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", contentType).
		SetHeader("Cache-Control", "max-age=3600").
		SetHeader("x-upsert", "false").
		SetBody(body).
		Post(c.objectURL(path))
	if err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return fmt.Errorf("store rejected: %w", err)
	}
	return nil
}

// Remove deletes an object. Used for best-effort cleanup of partial
// uploads after cancellation.
func (c *Client) Remove(ctx context.Context, token, path string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Delete(c.objectURL(path))
	if err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return fmt.Errorf("remove rejected: %w", err)
	}
	return nil
}

// objectURL constructs the full URL for an object path.
func (c *Client) objectURL(path string) string {
	path = strings.TrimPrefix(path, "/")
	return fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, path)
}
