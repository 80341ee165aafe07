package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"lexisync-desktop/internal/api"
	"lexisync-desktop/internal/crypto"
	"lexisync-desktop/internal/models"

	"gorm.io/gorm"
)

// ErrNotAuthenticated is returned when an operation requires a session
// and none is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the authentication context consumed by the upload and
// content services: who the user is and the bearer token to act as them.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AccessToken string `json:"-"`
}

// Manager owns the active session. Token issuance happens outside the
// app (the web login flow hands a token over); the manager only resolves
// the token to a user, keeps it in memory, and persists it encrypted so
// the session survives a restart.
type Manager struct {
	db     *gorm.DB
	client *api.Client

	mu      sync.RWMutex
	current *Session
}

// NewManager creates a session manager backed by the given API client.
// db may be nil, in which case sessions are memory-only.
func NewManager(db *gorm.DB, client *api.Client) *Manager {
	return &Manager{db: db, client: client}
}

// SignIn resolves the access token against GET /users/me, activates the
// session, and persists it for restore on next launch.
func (m *Manager) SignIn(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := m.resolveUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	if err := m.persist(session); err != nil {
		// Persistence failure downgrades to a memory-only session
		log.Printf("WARNING: Failed to persist session: %v", err)
	}

	return session, nil
}

// SignOut clears the active session and removes the stored copy.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	if err := m.db.Where("1 = 1").Delete(&models.StoredSession{}).Error; err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// Session returns the active session, or ErrNotAuthenticated.
func (m *Manager) Session() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNotAuthenticated
	}
	session := *m.current
	return &session, nil
}

// Restore loads the persisted session, if any, and re-validates its
// token against the backend. A dead token clears the stored session
// rather than failing startup.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	if m.db == nil {
		return nil, ErrNotAuthenticated
	}

	var stored models.StoredSession
	if err := m.db.Order("updated_at DESC").First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load stored session: %w", err)
	}

	token, err := crypto.DecryptToken(stored.AccessTokenEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt stored token: %w", err)
	}

	session, err := m.resolveUser(ctx, token)
	if err != nil {
		log.Printf("Stored session no longer valid, clearing: %v", err)
		if clearErr := m.SignOut(); clearErr != nil {
			log.Printf("WARNING: Failed to clear dead session: %v", clearErr)
		}
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return session, nil
}

// resolveUser validates the token and fetches the user profile.
func (m *Manager) resolveUser(ctx context.Context, accessToken string) (*Session, error) {
	resp, err := m.client.Get(ctx, accessToken, "users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	if err := api.CheckResponse(resp); err != nil {
		return nil, err
	}

	var user struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("failed to parse user profile: %w", err)
	}
	if user.ID == "" {
		return nil, errors.New("user profile missing id")
	}

	return &Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AccessToken: accessToken,
	}, nil
}

// persist stores the session with the token encrypted at rest.
func (m *Manager) persist(session *Session) error {
	if m.db == nil {
		return nil
	}
	if !crypto.IsInitialized() {
		return errors.New("encryption not initialized")
	}

	tokenEnc, err := crypto.EncryptToken(session.AccessToken)
	if err != nil {
		return err
	}

	// Single-row table: replace whatever was stored before.
	if err := m.db.Where("1 = 1").Delete(&models.StoredSession{}).Error; err != nil {
		return err
	}

	stored := models.StoredSession{
		UserID:         session.UserID,
		Email:          session.Email,
		DisplayName:    session.DisplayName,
		AccessTokenEnc: tokenEnc,
	}
	return m.db.Create(&stored).Error
}
