package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kai/internal/api"
)

// TokenStore abstracts persistence for session credentials.
type TokenStore interface {
	Load() (sessionState, error)
	Save(sessionState) error
	Clear() error
}

type sessionState struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

func (s sessionState) empty() bool {
	return strings.TrimSpace(s.AccessToken) == "" && strings.TrimSpace(s.RefreshToken) == ""
}

// FileTokenStore writes session credentials to a JSON file on disk.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads session state from disk. A missing file resolves to an empty
// session.
func (s *FileTokenStore) Load() (sessionState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sessionState{}, nil
		}
		return sessionState{}, fmt.Errorf("read session state: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return sessionState{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

// Save persists session state to disk with restricted permissions.
func (s *FileTokenStore) Save(state sessionState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure session state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

// Clear removes the persisted session file.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps session state in memory only (used in tests and
// ephemeral contexts).
type MemoryTokenStore struct {
	mu    sync.Mutex
	state sessionState
}

func (s *MemoryTokenStore) Load() (sessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryTokenStore) Save(state sessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionState{}
	return nil
}

// Session holds the current credential pair and coordinates token refresh.
// Concurrent requests that all receive 401 rendezvous in Refresh so exactly
// one network refresh happens per stale token.
type Session struct {
	store TokenStore

	mu    sync.RWMutex
	state sessionState
}

// NewSession builds a Session backed by the provided store, loading any
// persisted credentials.
func NewSession(store TokenStore) (*Session, error) {
	if store == nil {
		return nil, errors.New("token store is nil")
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, state: state}, nil
}

// AccessToken returns the current bearer token, if any.
func (s *Session) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token := strings.TrimSpace(s.state.AccessToken)
	return token, token != ""
}

// Authenticated reports whether any credentials are held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.state.empty()
}

// SetTokens stores and persists a new credential pair.
func (s *Session) SetTokens(tokens api.TokenResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := sessionState{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}
	if err := s.store.Save(state); err != nil {
		return err
	}
	s.state = state
	return nil
}

// Clear drops credentials from memory and the store.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.state = sessionState{}
	return nil
}

// exchangeFunc trades a refresh token for a new credential pair over the
// network.
type exchangeFunc func(ctx context.Context, refreshToken string) (*api.TokenResponse, error)

// Refresh obtains a fresh access token after stale was rejected with 401.
// Callers holding the same stale token coalesce: the first in refreshes
// over the network, the rest observe the rotated token and return it
// without a second refresh call. An exhausted refresh path clears the
// session and reports ErrSessionExpired.
func (s *Session) Refresh(ctx context.Context, stale string, exchange exchangeFunc) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := strings.TrimSpace(s.state.AccessToken); current != "" && current != stale {
		return current, nil
	}

	refreshToken := strings.TrimSpace(s.state.RefreshToken)
	if refreshToken == "" {
		s.clearLocked()
		return "", ErrSessionExpired
	}

	tokens, err := exchange(ctx, refreshToken)
	if err != nil {
		if IsConnectivity(err) {
			return "", err
		}
		s.clearLocked()
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	state := sessionState{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}
	if err := s.store.Save(state); err != nil {
		return "", err
	}
	s.state = state
	return state.AccessToken, nil
}

func (s *Session) clearLocked() {
	_ = s.store.Clear()
	s.state = sessionState{}
}
