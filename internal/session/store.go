// Package session persists the authenticated session across runs:
// the bearer token and the user profile, stored under ~/.parkwatch.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store reads and writes the single durable session. Creating a new
// session overwrites the previous one; there is never more than one.
type Store struct {
	dir string
}

// DefaultDir returns ~/.parkwatch.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".parkwatch"), nil
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save persists the session. The token write completes before Save
// returns, so a caller observing Save's return may rely on Token().
func (s *Store) Save(sess domain.Session) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), data, 0600); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Token returns the bearer token using precedence: env var > file > empty.
func (s *Store) Token() string {
	if tok := os.Getenv("PARKWATCH_TOKEN"); tok != "" {
		return tok
	}
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Load returns the stored session, or (nil, nil) when none exists.
func (s *Store) Load() (*domain.Session, error) {
	tok := s.Token()
	if tok == "" {
		return nil, nil
	}
	sess := domain.Session{Token: tok}
	data, err := os.ReadFile(filepath.Join(s.dir, userFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &sess.User); err != nil {
			return nil, fmt.Errorf("decode user profile: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Token without a profile is still a usable session.
	default:
		return nil, fmt.Errorf("read user profile: %w", err)
	}
	return &sess, nil
}

// Clear removes the token and profile. Missing files are not an error.
func (s *Store) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Expired reports whether the stored token carries a JWT expiry claim in
// the past. The claim is read without signature verification: only the
// backend can validate the token, this is a fast local pre-check to skip
// a doomed request. Tokens without a readable expiry count as live.
func (s *Store) Expired(now time.Time) bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
