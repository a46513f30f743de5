// Package session is the single place that answers "which token does this
// caller have": request headers and cookies on the gateway, a token file in
// the console client.
package session

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// Token returns the bearer token and whether one is present.
	Token() (string, bool)
}

// Store is a Source that can be written, e.g. after login or when the backend
// rejects the token.
type Store interface {
	Source
	Save(token string) error
	Clear() error
}

// Authenticated is the one "is logged in" check every caller uses.
func Authenticated(s Source) bool {
	if s == nil {
		return false
	}
	_, ok := s.Token()
	return ok
}

// Static is a read-only Source for a token already resolved.
type Static string

func (s Static) Token() (string, bool) {
	t := strings.TrimSpace(string(s))
	return t, t != ""
}

// FromRequest reads the Authorization bearer header first and falls back to
// the HTTP-only cookie.
func FromRequest(r *http.Request, cookieName string) (string, bool) {
	if r == nil {
		return "", false
	}
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			if t := strings.TrimSpace(h[7:]); t != "" && t != "null" && t != "undefined" {
				return t, true
			}
		}
	}
	if cookieName == "" {
		return "", false
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if t := strings.TrimSpace(c.Value); t != "" {
			return t, true
		}
	}
	return "", false
}

type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: strings.TrimSpace(token)}
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = strings.TrimSpace(token)
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save("")
}

// FileStore keeps the token in a 0600 file, the console equivalent of
// browser storage.
type FileStore struct {
	Path string
}

// DefaultFileStore places the token under the user config directory.
func DefaultFileStore() (FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileStore{}, err
	}
	return FileStore{Path: filepath.Join(dir, "cashloan", "token")}, nil
}

func (f FileStore) Token() (string, bool) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", false
	}
	t := strings.TrimSpace(string(raw))
	return t, t != ""
}

func (f FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
