package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Session holds the signed-in identity shared by every call of a Client.
// It is safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	token        string
	role         string
	user         json.RawMessage
	onInvalidate func()
}

type sessionFile struct {
	Token string          `json:"token"`
	Role  string          `json:"role"`
	User  json.RawMessage `json:"user,omitempty"`
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Set stores a new identity after login.
func (s *Session) Set(token, role string, user json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.role, s.user = token, role, user
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Role returns the signed-in role.
func (s *Session) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// User decodes the stored user record into v.
func (s *Session) User(v any) error {
	s.mu.Lock()
	raw := s.user
	s.mu.Unlock()
	if len(raw) == 0 {
		return fmt.Errorf("no user in session")
	}
	return json.Unmarshal(raw, v)
}

// Valid reports whether the session holds a token.
func (s *Session) Valid() bool {
	return s.Token() != ""
}

// OnInvalidate registers fn to run when the session is invalidated.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// Invalidate clears the session. The callback fires only when a token was
// actually cleared, so concurrent 401s report once.
func (s *Session) Invalidate() {
	s.mu.Lock()
	had := s.token != ""
	s.token, s.role, s.user = "", "", nil
	fn := s.onInvalidate
	s.mu.Unlock()

	if had && fn != nil {
		fn()
	}
}

// Save writes the session to path with owner-only permissions.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	data, err := json.Marshal(sessionFile{Token: s.token, Role: s.role, User: s.user})
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// LoadSession reads a session saved by Save. A missing file yields an empty
// session.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	s := NewSession()
	s.Set(f.Token, f.Role, f.User)
	return s, nil
}
