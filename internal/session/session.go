// Package session persists the API auth token between runs.
// The token lives in a small TOML file, by default ~/.local/state/sixcities/token.toml.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	toml "github.com/pelletier/go-toml/v2"
)

const defaultTokenPath = "~/.local/state/sixcities/token.toml"

// DefaultPath returns the default token file path.
func DefaultPath() string {
	return defaultTokenPath
}

type tokenFile struct {
	Token string `toml:"six-cities-token"`
}

// FileStore keeps the token in memory and mirrors every change to disk.
// It is safe for concurrent use.
type FileStore struct {
	path string

	mu    sync.RWMutex
	token string
}

// Open reads the token file at path. A missing or unreadable file yields an
// empty store; only path resolution errors are returned.
func Open(path string) (*FileStore, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve token path: %w", err)
	}
	s := &FileStore{path: resolved}
	s.token = readToken(resolved)
	return s, nil
}

// Path returns the resolved token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Token returns the current token, or "" when signed out.
func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save stores token and writes it to disk, creating directories as needed.
func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	bytes, err := toml.Marshal(tokenFile{Token: token})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, bytes, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	s.token = token
	return nil
}

// Clear forgets the token and removes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// MemoryStore is a non-persistent token store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current token.
func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Save replaces the token.
func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = strings.TrimSpace(token)
	return nil
}

// Clear forgets the token.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Expired reports whether token is a JWT whose exp claim lies before now.
// Opaque tokens are never considered expired; the server decides for those.
func Expired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

func readToken(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return ""
	}
	var tf tokenFile
	if err := toml.Unmarshal(bytes, &tf); err != nil {
		return ""
	}
	return strings.TrimSpace(tf.Token)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultTokenPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
