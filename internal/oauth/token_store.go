package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kindlechess/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// TokenStore persists a single TokenInfo as a JSON file.
//
// SECURITY: This store handles sensitive OAuth credentials.
//   - The file is created with 0600 permissions (owner read/write only)
//   - The parent directory is created with 0700 permissions (owner only)
//   - Token values are NEVER logged, only the file path
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// NewTokenStore creates a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Path returns the token file location.
func (s *TokenStore) Path() string {
	return s.path
}

// Persist writes token to disk, replacing any previous token.
func (s *TokenStore) Persist(token *TokenInfo) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("refusing to persist an empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Write a sibling file and rename it into place.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.auditFailure("token_store_failed", err)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		s.auditFailure("token_store_failed", err)
		return fmt.Errorf("failed to write token file: %w", err)
	}

	logging.Audit(logging.AuditEvent{Action: "token_stored", Outcome: "success", Target: s.path})
	return nil
}

// Load reads the stored token.
// It returns ErrTokenNotFound when there is no file and ErrTokenCorrupt when
// the file cannot be decoded or has no access token.
func (s *TokenStore) Load() (*TokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token TokenInfo
	if err := json.Unmarshal(data, &token); err != nil {
		logging.Warn("TokenStore", "Token file %s is not valid JSON", s.path)
		return nil, fmt.Errorf("%w: %w", ErrTokenCorrupt, err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrTokenCorrupt)
	}

	logging.Debug("TokenStore", "Loaded token from %s", s.path)
	return &token, nil
}

// Remove deletes the stored token. A missing file is not an error.
func (s *TokenStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.auditFailure("token_delete_failed", err)
		return fmt.Errorf("failed to remove token file: %w", err)
	}

	logging.Audit(logging.AuditEvent{Action: "token_deleted", Outcome: "success", Target: s.path})
	return nil
}

// Watch returns a channel that is closed once the token file is removed or
// renamed away, e.g. by "kindlechess auth logout" in another shell.
// The watch ends when ctx is cancelled.
func (s *TokenStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create token watcher: %w", err)
	}

	// Watch the directory: a watch on the file itself does not survive a rename.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	gone := make(chan struct{})

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					logging.Info("TokenStore", "Token file %s was removed", s.path)
					close(gone)
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("TokenStore", "Token watcher error: %v", err)
			}
		}
	}()

	return gone, nil
}

func (s *TokenStore) auditFailure(action string, err error) {
	logging.Audit(logging.AuditEvent{
		Action:  action,
		Outcome: "failure",
		Target:  s.path,
		Detail:  err.Error(),
	})
}
