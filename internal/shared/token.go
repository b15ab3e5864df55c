package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the session bearer token across process runs.
//
// The store holds at most one token. Load returns an empty string when no
// token has been saved; Clear is idempotent.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore implements [TokenStore] backed by a single file on disk.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store writing to the given path. A leading ~ is
// expanded to the user's home directory.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: ExpandPath(path)}
}

// Path returns the resolved token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the stored token. A missing file is not an error.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token with owner-only permissions, creating the parent
// directory if needed.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. Removing an absent token succeeds.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
