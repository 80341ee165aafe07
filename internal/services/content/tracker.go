package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"lexisync-desktop/internal/api"
	"lexisync-desktop/internal/auth"
	"lexisync-desktop/internal/events"
)

const (
	defaultPollInterval    = 3 * time.Second
	defaultFreshnessWindow = 1 * time.Second
)

// SessionProvider yields the active session, or an error when nobody is
// signed in.
type SessionProvider interface {
	Session() (*auth.Session, error)
}

// Tracker maintains the local mirror of the user's content items. It
// polls the API while any item is mid-pipeline, goes idle once every
// item is terminal, and wakes immediately on Invalidate. A failed fetch
// keeps the previous snapshot so the UI never blanks out on a transient
// network error.
type Tracker struct {
	client   *api.Client
	sessions SessionProvider
	emit     events.Emitter

	pollInterval    time.Duration
	freshnessWindow time.Duration

	mu        sync.RWMutex
	items     []ContentItem
	lastErr   error
	fetchedAt time.Time

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func NewTracker(client *api.Client, sessions SessionProvider, emit events.Emitter) *Tracker {
	if emit == nil {
		emit = events.NopEmitter{}
	}
	return &Tracker{
		client:          client,
		sessions:        sessions,
		emit:            emit,
		pollInterval:    defaultPollInterval,
		freshnessWindow: defaultFreshnessWindow,
		wake:            make(chan struct{}, 1),
		stop:            make(chan struct{}),
	}
}

// Start launches the polling loop. The first fetch happens immediately.
func (t *Tracker) Start() {
	go t.run()
}

// Stop shuts the polling loop down. Safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Invalidate wakes the tracker for an immediate refetch, bypassing the
// freshness window. Mutations call this after they succeed. The signal
// channel is buffered, so calling it from any goroutine never blocks.
func (t *Tracker) Invalidate() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Items returns a copy of the last successful snapshot along with the
// error of the most recent fetch, if it failed.
func (t *Tracker) Items() ([]ContentItem, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	items := make([]ContentItem, len(t.items))
	copy(items, t.items)
	return items, t.lastErr
}

// Item returns the cached item with the given id.
func (t *Tracker) Item(id string) (ContentItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, item := range t.items {
		if item.ID == id {
			return item, true
		}
	}
	return ContentItem{}, false
}

func (t *Tracker) run() {
	next := time.After(0)
	for {
		select {
		case <-t.stop:
			return
		case <-t.wake:
			t.refresh(true)
		case <-next:
			t.refresh(false)
		}

		if t.needsPolling() {
			next = time.After(t.pollInterval)
		} else {
			// Idle until a mutation or upload invalidates the cache.
			next = nil
		}
	}
}

// needsPolling is computed from the cached snapshot, not the latest
// fetch attempt: a transient fetch failure must not stop polling while
// cached items are still mid-pipeline, and must not start it when they
// are not.
func (t *Tracker) needsPolling() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return AnyInFlight(t.items)
}

func (t *Tracker) refresh(force bool) {
	if !force && t.isFresh() {
		return
	}

	items, err := t.fetch()
	if err != nil {
		t.mu.Lock()
		t.lastErr = err
		t.mu.Unlock()
		log.Printf("WARNING: content refresh failed: %v", err)
		t.emit.Emit("content:error", err.Error())
		return
	}

	t.mu.Lock()
	t.items = items
	t.lastErr = nil
	t.fetchedAt = time.Now()
	t.mu.Unlock()
	t.emit.Emit("content:items", items)
}

func (t *Tracker) isFresh() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.fetchedAt.IsZero() && time.Since(t.fetchedAt) < t.freshnessWindow
}

func (t *Tracker) fetch() ([]ContentItem, error) {
	session, err := t.sessions.Session()
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Get(context.Background(), session.AccessToken, "content-items", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content items: %w", err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return nil, err
	}

	var payload struct {
		Items []contentItemRecord `json:"items"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse content items response: %w", err)
	}

	items := make([]ContentItem, 0, len(payload.Items))
	for _, rec := range payload.Items {
		item, err := normalizeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize content item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
