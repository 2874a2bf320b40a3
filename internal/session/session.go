// Package session holds the bearer token shared by every API client and
// collection controller in the process.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/me/storecms/internal/logging"
)

const credentialsFileName = "credentials.json"

type credentials struct {
	Token string `json:"token"`
}

// Store is the single authoritative token. Reads are concurrent; Clear may
// race from several controllers and always converges to "no token".
type Store struct {
	mu     sync.RWMutex
	token  string
	path   string
	logger *slog.Logger
}

// New returns a store persisted at path. An empty path keeps the token in
// memory only.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logging.Component(logger, "session")}
}

// DefaultPath returns ~/.storecms/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".storecms", credentialsFileName), nil
}

// Load reads the persisted token. A missing file is not an error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parse credentials %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.token = creds.Token
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Path returns the credentials file location.
func (s *Store) Path() string { return s.path }

// Set replaces the token and persists it.
func (s *Store) Set(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	return s.persist(token)
}

// Clear drops the token. Clearing an already empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return
	}
	s.token = ""
	if s.path == "" {
		return
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove credentials", "path", s.path, "error", err)
		return
	}
	s.logger.Info("session cleared")
}

func (s *Store) persist(token string) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(credentials{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
