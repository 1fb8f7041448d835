package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session mirrors the token triple on disk, the way a browser client would
// mirror it in session cookies.
type Session struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ShopDomain   string `json:"shop_domain,omitempty"`
}

// SessionStore persists and reports the externally observable session state.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
	Present() bool // any credential persisted, without full deserialization guarantees
}

// SessionFile is the default SessionStore backed by a JSON file.
type SessionFile struct {
	path string
}

// NewSessionFile creates a SessionFile at the given path.
// An empty path defaults to ~/.themeforge/session.json.
func NewSessionFile(path string) *SessionFile {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".themeforge", "session.json")
	}
	return &SessionFile{path: path}
}

// Path returns the backing file path.
func (f *SessionFile) Path() string {
	return f.path
}

// Load reads the persisted session. A missing file is not an error and
// yields an empty session.
func (f *SessionFile) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}

	return session, nil
}

// Save writes the session with owner-only permissions.
func (f *SessionFile) Save(session Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear removes the persisted session. A missing file is not an error.
func (f *SessionFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Present reports whether any persisted credential exists.
func (f *SessionFile) Present() bool {
	session, err := f.Load()
	if err != nil {
		return false
	}
	return session.AccessToken != "" || session.RefreshToken != ""
}
