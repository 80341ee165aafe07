package uploader

import (
	"lexisync-desktop/internal/services/content"
)

// UploadStatus is the local lifecycle stage of a queue entry. It tracks
// what this client is doing with the file, not the server pipeline.
type UploadStatus string

const (
	StatusQueued     UploadStatus = "queued"
	StatusUploading  UploadStatus = "uploading"
	StatusProcessing UploadStatus = "processing"
	StatusComplete   UploadStatus = "complete"
	StatusError      UploadStatus = "error"
	StatusCancelled  UploadStatus = "cancelled"
)

// validTransitions defines the allowed lifecycle moves for a queue
// entry. Terminal states have no outgoing edges.
var validTransitions = map[UploadStatus][]UploadStatus{
	StatusQueued:     {StatusUploading, StatusError, StatusCancelled},
	StatusUploading:  {StatusProcessing, StatusError, StatusCancelled},
	StatusProcessing: {StatusComplete, StatusError, StatusCancelled},
}

func canTransition(from, to UploadStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the entry has finished, one way or another.
func (s UploadStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// SourceFile describes a local file picked for upload.
type SourceFile struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// UploadEntry is one file in the upload queue. ContentID is generated
// at enqueue time so the object path and the later content item agree
// on an identifier before the server has seen either.
type UploadEntry struct {
	ID          string              `json:"id"`
	ContentID   string              `json:"content_id"`
	File        SourceFile          `json:"file"`
	ContentType content.ContentType `json:"content_type"`
	Status      UploadStatus        `json:"status"`
	Progress    int                 `json:"progress"`
	Error       string              `json:"error,omitempty"`
}
