package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client represents a backend API client. All requests carry a bearer
// token supplied per call; the client itself holds no session state so a
// single instance can outlive sign-in/sign-out cycles.
type Client struct {
	baseURL    string
	http       *resty.Client
	titleCache *lruCache
}

// NewClient creates a new backend API client.
func NewClient(baseURL string) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		titleCache: newLRUCache(256),
	}

	// Mutations must never be retried automatically, so no retry
	// conditions are configured here.
	client.http = resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(120 * time.Second)

	return client
}

// Get performs a GET request against the backend API.
func (c *Client) Get(ctx context.Context, token, endpoint string, params map[string]string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)

	if params != nil {
		req.SetQueryParams(params)
	}

	return req.Get(c.buildURL(endpoint))
}

// Post performs a POST request against the backend API.
func (c *Client) Post(ctx context.Context, token, endpoint string, payload interface{}) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)

	if payload != nil {
		req.SetBody(payload)
	}

	return req.Post(c.buildURL(endpoint))
}

// Delete performs a DELETE request against the backend API.
func (c *Client) Delete(ctx context.Context, token, endpoint string) (*resty.Response, error) {
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Delete(c.buildURL(endpoint))
}

// GetContentTitle resolves the display title of a content item (with
// caching). Falls back to the item ID when the lookup fails so callers
// always have something to render.
func (c *Client) GetContentTitle(ctx context.Context, token, itemID string) string {
	if title, exists := c.titleCache.Get(itemID); exists {
		return title
	}

	resp, err := c.Get(ctx, token, fmt.Sprintf("content-items/%s", itemID), nil)
	if err != nil || !resp.IsSuccess() {
		// Do not cache failures: the item may simply still be processing.
		return itemID
	}

	var result struct {
		Title            string `json:"title"`
		OriginalFilename string `json:"original_filename"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return itemID
	}

	title := result.Title
	if title == "" {
		title = result.OriginalFilename
	}
	if title == "" {
		title = itemID
	}

	c.titleCache.Put(itemID, title)
	return title
}

// InvalidateTitle drops a cached title, used after delete/retry so the
// next lookup re-reads the server copy.
func (c *Client) InvalidateTitle(itemID string) {
	c.titleCache.Remove(itemID)
}

// buildURL constructs the full URL for an endpoint.
func (c *Client) buildURL(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "/")
	return fmt.Sprintf("%s/%s", c.baseURL, endpoint)
}

// SetTimeout allows customizing the timeout for specific operations.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}
