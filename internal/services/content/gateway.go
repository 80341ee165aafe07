package content

import (
	"context"
	"fmt"

	"lexisync-desktop/internal/api"
)

// Invalidator wakes the tracker after a successful mutation.
type Invalidator interface {
	Invalidate()
}

// Gateway performs mutations on server-owned content items. Every
// successful mutation invalidates the tracker so the local mirror
// converges without waiting for the next poll. API errors are returned
// as *api.Error so callers can branch on status and code.
type Gateway struct {
	client      *api.Client
	sessions    SessionProvider
	invalidator Invalidator
}

func NewGateway(client *api.Client, sessions SessionProvider, invalidator Invalidator) *Gateway {
	return &Gateway{client: client, sessions: sessions, invalidator: invalidator}
}

// DeleteItem removes a content item. The server cascades removal of the
// stored object and derived analysis data.
func (g *Gateway) DeleteItem(ctx context.Context, itemID string) error {
	session, err := g.sessions.Session()
	if err != nil {
		return err
	}

	resp, err := g.client.Delete(ctx, session.AccessToken, "content-items/"+itemID)
	if err != nil {
		return fmt.Errorf("failed to delete content item %s: %w", itemID, err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return err
	}

	g.client.InvalidateTitle(itemID)
	g.invalidator.Invalidate()
	return nil
}

// RetryItem asks the server to re-run processing for a failed item.
func (g *Gateway) RetryItem(ctx context.Context, itemID string) error {
	session, err := g.sessions.Session()
	if err != nil {
		return err
	}

	resp, err := g.client.Post(ctx, session.AccessToken, "content-items/"+itemID+"/process", nil)
	if err != nil {
		return fmt.Errorf("failed to retry content item %s: %w", itemID, err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return err
	}

	g.invalidator.Invalidate()
	return nil
}

// CreateItem registers a freshly stored object as a content item and
// hands it to the processing pipeline. The uploader calls this with the
// token it captured at the start of the upload pass.
func (g *Gateway) CreateItem(ctx context.Context, token string, req CreateContentRequest) error {
	resp, err := g.client.Post(ctx, token, "content-items", req)
	if err != nil {
		return fmt.Errorf("failed to create content item: %w", err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return err
	}
	return nil
}
