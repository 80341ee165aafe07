package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"lexisync-desktop/internal/api"
	"lexisync-desktop/internal/auth"
	"lexisync-desktop/internal/crypto"
	"lexisync-desktop/internal/database"
	"lexisync-desktop/internal/events"
	"lexisync-desktop/internal/models"
	"lexisync-desktop/internal/services/content"
	"lexisync-desktop/internal/services/scheduler"
	"lexisync-desktop/internal/services/uploader"
	"lexisync-desktop/internal/storage"
)

const (
	defaultAPIBaseURL     = "http://localhost:8000/api/v1"
	defaultStorageBaseURL = "http://localhost:8000/storage/v1"
)

// App struct - main application state
type App struct {
	ctx     context.Context
	db      *gorm.DB
	emitter *events.WailsEmitter

	apiClient        *api.Client
	sessionManager   *auth.Manager
	uploadService    *uploader.Service
	contentTracker   *content.Tracker
	contentGateway   *content.Gateway
	schedulerService *scheduler.Service
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		emitter: events.NewWailsEmitter(),
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emitter.Bind(ctx)
	log.Println("Application starting up...")

	// Initialize encryption (FATAL if this fails - sessions cannot be
	// persisted without it)
	if err := crypto.InitEncryption(); err != nil {
		log.Fatalf("FATAL: Encryption initialization failed: %v\nSessions cannot be persisted without encryption.", err)
	}
	log.Println("Encryption initialized successfully")

	// Initialize database
	db, err := database.Init()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	a.db = db
	log.Println("Database initialized successfully")

	// Initialize services
	a.apiClient = api.NewClient(getEnv("LEXISYNC_API_URL", defaultAPIBaseURL))
	if timeout := getEnvDuration("LEXISYNC_API_TIMEOUT", 0); timeout > 0 {
		a.apiClient.SetTimeout(timeout)
	}
	a.sessionManager = auth.NewManager(db, a.apiClient)
	if _, err := a.sessionManager.Restore(ctx); err != nil {
		log.Printf("No session restored: %v", err)
	}

	a.contentTracker = content.NewTracker(a.apiClient, a.sessionManager, a.emitter)
	a.contentTracker.Start()
	log.Println("Content tracker started")

	a.contentGateway = content.NewGateway(a.apiClient, a.sessionManager, a.contentTracker)

	store := storage.NewClient(getEnv("LEXISYNC_STORAGE_URL", defaultStorageBaseURL))
	a.uploadService = uploader.NewService(store, a.contentGateway, a.sessionManager, a.contentTracker, a.emitter, db)
	log.Println("Upload service initialized")

	a.schedulerService = scheduler.NewService(db, a.contentTracker)
	if err := a.schedulerService.Start(); err != nil {
		log.Printf("WARNING: Failed to start scheduler: %v", err)
	} else {
		log.Println("Scheduler service initialized and started")
	}

	log.Println("Startup complete")
}

// shutdown is called when the app is closing
func (a *App) shutdown(ctx context.Context) {
	log.Println("Application shutting down...")

	if a.schedulerService != nil {
		a.schedulerService.Stop()
	}
	if a.contentTracker != nil {
		a.contentTracker.Stop()
	}
	if err := database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Shutdown complete")
}

// ====================================================================================
// WAILS-BOUND METHODS - Exposed to Frontend
// ====================================================================================

// Session Methods

// SignIn exchanges an access token for a session and persists it.
func (a *App) SignIn(accessToken string) (*auth.Session, error) {
	return a.sessionManager.SignIn(a.ctx, accessToken)
}

// SignOut clears the active session.
func (a *App) SignOut() error {
	return a.sessionManager.SignOut()
}

// GetSession returns the active session, if any.
func (a *App) GetSession() (*auth.Session, error) {
	return a.sessionManager.Session()
}

// Upload Methods

// EnqueueFile validates a picked file and adds it to the upload queue.
// The MIME type is derived from the file extension.
func (a *App) EnqueueFile(path string) (uploader.UploadEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return uploader.UploadEntry{}, fmt.Errorf("failed to read file info: %w", err)
	}
	if info.IsDir() {
		return uploader.UploadEntry{}, fmt.Errorf("%s is a directory", path)
	}

	file := uploader.SourceFile{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
	}
	return a.uploadService.Enqueue(file), nil
}

// GetUploadQueue returns all queue entries in enqueue order.
func (a *App) GetUploadQueue() []uploader.UploadEntry {
	return a.uploadService.Queue()
}

// StartUpload launches a sequential pass over everything queued.
func (a *App) StartUpload() error {
	return a.uploadService.StartUpload()
}

// CancelUpload stops a queued or active upload entry.
func (a *App) CancelUpload(entryID string) error {
	return a.uploadService.Cancel(entryID)
}

// ClearCompletedUploads drops finished entries from the queue and
// returns how many were removed.
func (a *App) ClearCompletedUploads() int {
	return a.uploadService.ClearCompleted()
}

// IsUploading reports whether an upload pass is running.
func (a *App) IsUploading() bool {
	return a.uploadService.IsUploading()
}

// GetUploadHistory returns recent upload outcomes, newest first.
func (a *App) GetUploadHistory(limit int) ([]models.UploadRecord, error) {
	return a.uploadService.History(limit)
}

// Content Methods

// GetContentItems returns the cached content snapshot. The error, if
// set, describes the most recent failed refresh.
func (a *App) GetContentItems() ([]content.ContentItem, error) {
	return a.contentTracker.Items()
}

// RefreshContent forces an immediate refetch of content items.
func (a *App) RefreshContent() {
	a.contentTracker.Invalidate()
}

// GetContentItem returns a single cached content item.
func (a *App) GetContentItem(itemID string) (*content.ContentItem, error) {
	item, ok := a.contentTracker.Item(itemID)
	if !ok {
		return nil, fmt.Errorf("content item %s not found", itemID)
	}
	return &item, nil
}

// GetContentTitle resolves a display title for a content item.
func (a *App) GetContentTitle(itemID string) string {
	session, err := a.sessionManager.Session()
	if err != nil {
		return itemID
	}
	return a.apiClient.GetContentTitle(a.ctx, session.AccessToken, itemID)
}

// DeleteContentItem removes a content item and its stored data.
func (a *App) DeleteContentItem(itemID string) error {
	return a.contentGateway.DeleteItem(a.ctx, itemID)
}

// RetryContentItem re-runs processing for a failed content item.
func (a *App) RetryContentItem(itemID string) error {
	return a.contentGateway.RetryItem(a.ctx, itemID)
}

// Scheduler Methods

// ListScheduledJobs returns all scheduled maintenance jobs.
func (a *App) ListScheduledJobs() ([]scheduler.JobListResponse, error) {
	return a.schedulerService.ListJobs()
}

// UpsertScheduledJob creates or updates a scheduled job by name.
func (a *App) UpsertScheduledJob(req scheduler.UpsertJobRequest) (string, error) {
	return a.schedulerService.UpsertJob(req)
}

// DeleteScheduledJob removes a scheduled job.
func (a *App) DeleteScheduledJob(jobID string) error {
	return a.schedulerService.DeleteJob(jobID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration from environment variable with default fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultValue
}
