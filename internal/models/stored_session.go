package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredSession holds the last signed-in session so the app can restore
// it on launch. The access token is encrypted at rest; the AES key lives
// in the system keychain.
type StoredSession struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"not null;column:user_id" json:"user_id"`
	Email          string    `json:"email"`
	DisplayName    string    `gorm:"column:display_name" json:"display_name"`
	AccessTokenEnc string    `gorm:"not null;column:access_token_enc" json:"-"` // Encrypted, never expose in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating record
func (ss *StoredSession) BeforeCreate(tx *gorm.DB) error {
	if ss.ID == "" {
		ss.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GORM
func (StoredSession) TableName() string {
	return "stored_sessions"
}
