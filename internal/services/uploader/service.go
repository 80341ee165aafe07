package uploader

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"lexisync-desktop/internal/events"
	"lexisync-desktop/internal/models"
	"lexisync-desktop/internal/services/content"
)

const defaultProgressTick = 200 * time.Millisecond

// ObjectStore persists raw file bytes under a caller-chosen path.
type ObjectStore interface {
	Store(ctx context.Context, token, path string, body io.Reader, contentType string) error
	Remove(ctx context.Context, token, path string) error
}

// ContentCreator registers a stored object as a content item.
type ContentCreator interface {
	CreateItem(ctx context.Context, token string, req content.CreateContentRequest) error
}

// Service drives the upload queue: it owns the sequential executor that
// moves queued files into object storage and hands them off to the
// content pipeline. One file transfers at a time; cancellation is
// per-entry through a context captured when the entry starts.
type Service struct {
	queue       *Queue
	store       ObjectStore
	creator     ContentCreator
	sessions    content.SessionProvider
	invalidator content.Invalidator
	emit        events.Emitter
	db          *gorm.DB

	progressTick time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	running bool
}

// NewService wires the upload service. db may be nil, in which case no
// upload history is recorded; invalidator may be nil when no tracker is
// attached.
func NewService(store ObjectStore, creator ContentCreator, sessions content.SessionProvider, invalidator content.Invalidator, emit events.Emitter, db *gorm.DB) *Service {
	if emit == nil {
		emit = events.NopEmitter{}
	}
	return &Service{
		queue:        NewQueue(),
		store:        store,
		creator:      creator,
		sessions:     sessions,
		invalidator:  invalidator,
		emit:         emit,
		db:           db,
		progressTick: defaultProgressTick,
		cancels:      make(map[string]context.CancelFunc),
	}
}

// Enqueue adds a picked file to the queue. Unsupported or oversized
// files surface as error entries right away.
func (s *Service) Enqueue(file SourceFile) UploadEntry {
	entry := s.queue.Enqueue(file)
	s.emitEntry(entry)
	return entry
}

// Queue returns a snapshot of all entries in enqueue order.
func (s *Service) Queue() []UploadEntry {
	return s.queue.Entries()
}

// ClearCompleted drops finished entries from the queue.
func (s *Service) ClearCompleted() int {
	return s.queue.ClearCompleted()
}

// IsUploading reports whether an upload pass is currently running.
func (s *Service) IsUploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Cancel stops an entry. Entries that have not started transferring are
// removed outright since nothing exists remotely yet; active entries
// get their context cancelled and settle asynchronously.
func (s *Service) Cancel(id string) error {
	entry, ok := s.queue.Get(id)
	if !ok {
		return fmt.Errorf("upload entry %s not found", id)
	}

	switch entry.Status {
	case StatusQueued:
		s.queue.Remove(id)
		s.emit.Emit("upload:removed", id)
		return nil
	case StatusUploading, StatusProcessing:
		s.mu.Lock()
		cancel, exists := s.cancels[id]
		s.mu.Unlock()
		if exists {
			cancel()
		}
		return nil
	default:
		return fmt.Errorf("upload entry %s already finished", id)
	}
}

// StartUpload launches a sequential pass over everything queued right
// now. Files enqueued after this call wait for the next pass. Without a
// session, every queued entry fails immediately instead of silently
// sitting in the queue.
func (s *Service) StartUpload() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("an upload is already in progress")
	}
	s.running = true
	s.mu.Unlock()

	session, err := s.sessions.Session()
	if err != nil {
		for _, entry := range s.queue.Entries() {
			if entry.Status == StatusQueued {
				s.finish(entry, StatusError, "not authenticated")
			}
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}

	var batch []UploadEntry
	for _, entry := range s.queue.Entries() {
		if entry.Status == StatusQueued {
			batch = append(batch, entry)
		}
	}

	go s.run(session.AccessToken, session.UserID, batch)
	return nil
}

func (s *Service) run(token, userID string, batch []UploadEntry) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		// Pull fresh state so the freshly handed-off items show up.
		if s.invalidator != nil {
			s.invalidator.Invalidate()
		}
		s.emit.Emit("upload:done", nil)
	}()

	for _, snapshot := range batch {
		// The batch was captured at start time; re-read the live entry
		// so anything cancelled while waiting its turn is skipped.
		entry, ok := s.queue.Get(snapshot.ID)
		if !ok || entry.Status != StatusQueued {
			continue
		}
		s.uploadEntry(token, userID, entry)
	}
}

func (s *Service) uploadEntry(token, userID string, entry UploadEntry) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[entry.ID] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.cancels, entry.ID)
		s.mu.Unlock()
	}()

	if updated, err := s.queue.SetStatus(entry.ID, StatusUploading, ""); err == nil {
		s.emitEntry(updated)
	} else {
		return
	}

	stopProgress := s.startProgressTicker(entry.ID)
	defer stopProgress()

	remotePath := fmt.Sprintf("%s/%s/%s", userID, entry.ContentID, entry.File.Name)

	file, err := os.Open(entry.File.Path)
	if err != nil {
		stopProgress()
		s.finish(entry, StatusError, fmt.Sprintf("failed to open file: %v", err))
		return
	}
	defer file.Close()

	if ctx.Err() != nil {
		stopProgress()
		s.finish(entry, StatusCancelled, "")
		return
	}

	storeErr := s.store.Store(ctx, token, remotePath, file, entry.File.MimeType)
	stopProgress()

	if ctx.Err() != nil {
		// Cancelled during or right after the transfer. The object may
		// exist remotely; removal is best effort, the server would only
		// see it again if the same content id were ever reused.
		if storeErr == nil {
			s.removeRemote(token, remotePath)
		}
		s.finish(entry, StatusCancelled, "")
		return
	}
	if storeErr != nil {
		s.finish(entry, StatusError, storeErr.Error())
		return
	}

	if updated, err := s.queue.SetStatus(entry.ID, StatusProcessing, ""); err == nil {
		s.emitEntry(updated)
	}

	req := content.CreateContentRequest{
		ContentType:      entry.ContentType,
		OriginalFilename: entry.File.Name,
		FilePath:         remotePath,
		FileSize:         entry.File.Size,
		MimeType:         entry.File.MimeType,
	}
	handoffErr := s.creator.CreateItem(ctx, token, req)
	if ctx.Err() != nil {
		// A cancel during hand-off is still a cancel, not a failure.
		s.finish(entry, StatusCancelled, "")
		return
	}
	if handoffErr != nil {
		s.finish(entry, StatusError, handoffErr.Error())
		return
	}

	s.finish(entry, StatusComplete, "")
}

// startProgressTicker animates progress while the transfer runs. The
// transport gives no byte-level feedback, so progress climbs in steps
// of 10 and parks at 90 until the transfer settles. The returned stop
// function is safe to call multiple times.
func (s *Service) startProgressTicker(id string) func() {
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		ticker := time.NewTicker(s.progressTick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				entry, ok := s.queue.Get(id)
				if !ok {
					return
				}
				next := entry.Progress + 10
				if next > 90 {
					next = 90
				}
				if updated, changed := s.queue.SetProgress(id, next); changed {
					s.emitEntry(updated)
				}
			}
		}
	}()

	return stop
}

func (s *Service) finish(entry UploadEntry, status UploadStatus, errMsg string) {
	updated, err := s.queue.SetStatus(entry.ID, status, errMsg)
	if err != nil {
		log.Printf("WARNING: could not finalize upload %s as %s: %v", entry.ID, status, err)
		return
	}
	s.emitEntry(updated)
	s.recordHistory(updated)
}

func (s *Service) removeRemote(token, remotePath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.Remove(ctx, token, remotePath); err != nil {
		log.Printf("WARNING: failed to remove cancelled upload object %s: %v", remotePath, err)
	}
}

func (s *Service) emitEntry(entry UploadEntry) {
	s.emit.Emit(fmt.Sprintf("upload:%s", entry.ID), entry)
}

func (s *Service) recordHistory(entry UploadEntry) {
	if s.db == nil {
		return
	}
	record := models.UploadRecord{
		ContentID:        entry.ContentID,
		OriginalFilename: entry.File.Name,
		FilePath:         entry.File.Path,
		FileSize:         entry.File.Size,
		MimeType:         entry.File.MimeType,
		ContentType:      string(entry.ContentType),
		Status:           string(entry.Status),
		Error:            entry.Error,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("WARNING: failed to record upload history for %s: %v", entry.ID, err)
	}
}

// History returns the most recent upload outcomes, newest first.
func (s *Service) History(limit int) ([]models.UploadRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var records []models.UploadRecord
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load upload history: %w", err)
	}
	return records, nil
}
