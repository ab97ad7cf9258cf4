// internal/session/store.go
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// state is what gets persisted between runs: the bearer credential and
// the UI theme preference, nothing else.
type state struct {
	Token string `json:"token,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// Store persists the session state to a local file with an explicit
// Load/Save/Clear lifecycle. Safe for concurrent use: the transport
// reads the credential from parallel requests and destroys it on a 401
// while other requests are still in flight.
type Store struct {
	path string

	mu      sync.Mutex
	state   state
	current *Session
}

// NewStore creates a store backed by the given state file. The file is
// not read until Load is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the state file and derives the current session from the
// stored credential. A missing file is the unauthenticated state, not
// an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.state = state{}
		s.current = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return fmt.Errorf("failed to parse session state: %w", err)
	}

	if s.state.Token == "" {
		s.current = nil
		return nil
	}

	identity, err := ParseIdentity(s.state.Token)
	if err != nil {
		// Unreadable credential is as good as none
		s.state.Token = ""
		s.current = nil
		return nil
	}

	s.current = &Session{Token: s.state.Token, Identity: identity}
	return nil
}

// Save stores a new credential and makes it the current session
func (s *Store) Save(token string) error {
	identity, err := ParseIdentity(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Token = token
	if err := s.write(); err != nil {
		return err
	}

	s.current = &Session{Token: token, Identity: identity}
	return nil
}

// Clear destroys the stored credential. The theme preference survives.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Token = ""
	s.current = nil
	return s.write()
}

// Current returns the active session or ErrUnauthenticated
func (s *Store) Current() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrUnauthenticated
	}
	return s.current, nil
}

// Theme returns the persisted UI theme preference
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Theme == "" {
		return "light"
	}
	return s.state.Theme
}

// SetTheme persists the UI theme preference
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Theme = theme
	return s.write()
}

// write persists the state file. Callers hold the mutex.
func (s *Store) write() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	return nil
}
