// Package events decouples services from the Wails runtime so they can
// publish UI events without holding a live runtime context (tests, CLI
// probes, early startup).
package events

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Emitter publishes named events toward the UI layer.
type Emitter interface {
	Emit(event string, payload interface{})
}

// WailsEmitter forwards events through the Wails runtime. Events emitted
// before the runtime context is bound are dropped; the UI re-reads state
// on mount anyway.
type WailsEmitter struct {
	mu  sync.RWMutex
	ctx context.Context
}

// NewWailsEmitter creates an emitter with no runtime context bound yet.
func NewWailsEmitter() *WailsEmitter {
	return &WailsEmitter{}
}

// Bind attaches the Wails runtime context, usually from OnStartup.
func (e *WailsEmitter) Bind(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx = ctx
}

// Emit publishes the event if the runtime is available.
func (e *WailsEmitter) Emit(event string, payload interface{}) {
	e.mu.RLock()
	ctx := e.ctx
	e.mu.RUnlock()

	if ctx == nil {
		return
	}
	runtime.EventsEmit(ctx, event, payload)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(string, interface{}) {}
