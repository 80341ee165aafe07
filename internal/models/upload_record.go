package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadRecord is the locally persisted outcome of a single upload
// entry. One row is written when an entry reaches a terminal status, so
// the history survives app restarts even though the live queue does not.
type UploadRecord struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	ContentID        string    `gorm:"column:content_id;index" json:"content_id"`
	OriginalFilename string    `gorm:"not null;column:original_filename" json:"original_filename"`
	FilePath         string    `gorm:"column:file_path" json:"file_path"`
	FileSize         int64     `gorm:"column:file_size" json:"file_size"`
	MimeType         string    `gorm:"column:mime_type" json:"mime_type"`
	ContentType      string    `gorm:"column:content_type" json:"content_type"`
	Status           string    `gorm:"not null" json:"status"` // complete, error, cancelled
	Error            string    `gorm:"type:text" json:"error"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating record
func (ur *UploadRecord) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == "" {
		ur.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (UploadRecord) TableName() string {
	return "upload_records"
}
