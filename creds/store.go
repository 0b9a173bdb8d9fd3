// Package creds persists the session credential for the drive service.
package creds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/golang-jwt/jwt/v5"
)

// tokenFileName is the fixed key the credential is stored under.
const tokenFileName = "token"

// Store holds a single bearer credential on disk. The token is re-read on
// every Token call, so a rotation or logout performed by another process is
// picked up by the next request without restarting the session.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// DefaultPath returns the credential file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "clouddrive", tokenFileName), nil
}

// Save writes the credential, replacing any previous one.
func (s *Store) Save(token string) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock credential file: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Token returns the stored credential, or "" when none is saved.
func (s *Store) Token() string {
	if err := s.lock.RLock(); err != nil {
		return ""
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Clear removes the stored credential. Clearing an absent credential is not
// an error.
func (s *Store) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock credential file: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// Authenticated reports whether a credential is present and, when it is a
// JWT carrying an exp claim, not yet expired. The signature is not checked;
// the server stays authoritative, this only decides the startup state.
func (s *Store) Authenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque token, presence is all we can check.
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().Before(exp.Time)
}
