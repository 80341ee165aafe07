package uploader

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Queue holds upload entries in enqueue order. All access goes through
// the mutex; snapshots are copies so callers never observe a mutation
// mid-flight.
type Queue struct {
	mu      sync.Mutex
	entries []*UploadEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue validates the file and appends an entry. Validation failures
// still produce an entry, immediately in the error state, so the UI can
// show why the file was refused alongside the rest of the queue.
func (q *Queue) Enqueue(file SourceFile) UploadEntry {
	entry := &UploadEntry{
		ID:        uuid.New().String(),
		ContentID: uuid.New().String(),
		File:      file,
		Status:    StatusQueued,
	}

	contentType, err := validateFile(file)
	if err != nil {
		entry.Status = StatusError
		entry.Error = err.Error()
	} else {
		entry.ContentType = contentType
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entry)
	return *entry
}

// Entries returns a snapshot of the queue in enqueue order.
func (q *Queue) Entries() []UploadEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]UploadEntry, len(q.entries))
	for i, entry := range q.entries {
		out[i] = *entry
	}
	return out
}

// Get returns a copy of the entry with the given id.
func (q *Queue) Get(id string) (UploadEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if entry := q.find(id); entry != nil {
		return *entry, true
	}
	return UploadEntry{}, false
}

// Remove deletes an entry outright. Used for cancelling entries that
// have not started transferring, where nothing remote exists yet.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, entry := range q.entries {
		if entry.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// ClearCompleted drops every terminal entry, keeping queued and active
// ones in place.
func (q *Queue) ClearCompleted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.entries[:0]
	removed := 0
	for _, entry := range q.entries {
		if entry.Status.IsTerminal() {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	q.entries = kept
	return removed
}

// SetStatus moves an entry through its lifecycle, rejecting transitions
// the state machine does not allow (most importantly out of terminal
// states). Returns the updated copy.
func (q *Queue) SetStatus(id string, status UploadStatus, errMsg string) (UploadEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry := q.find(id)
	if entry == nil {
		return UploadEntry{}, fmt.Errorf("upload entry %s not found", id)
	}
	if !canTransition(entry.Status, status) {
		return *entry, fmt.Errorf("invalid upload transition %s -> %s for entry %s", entry.Status, status, id)
	}
	entry.Status = status
	entry.Error = errMsg
	if status == StatusProcessing {
		// The transfer finished; snap the simulated progress to done.
		entry.Progress = 100
	}
	return *entry, nil
}

// SetProgress advances the progress indicator. Progress never moves
// backwards and only applies while the entry is actively uploading.
func (q *Queue) SetProgress(id string, progress int) (UploadEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry := q.find(id)
	if entry == nil || entry.Status != StatusUploading {
		return UploadEntry{}, false
	}
	if progress > entry.Progress {
		entry.Progress = progress
	}
	return *entry, true
}

func (q *Queue) find(id string) *UploadEntry {
	for _, entry := range q.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}
