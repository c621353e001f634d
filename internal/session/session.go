package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotAuthenticated is the client-side precondition failure for actions
// that need a logged-in viewer. Callers intercept it and open the login
// prompt instead of sending anything to the server.
var ErrNotAuthenticated = errors.New("action requires login")

// Record is the persisted session state, surviving restarts until explicit
// logout or an irrecoverable token refresh failure.
type Record struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

// Store persists the session record. The sqlite repository implements it.
type Store interface {
	LoadSession(ctx context.Context) (Record, bool, error)
	SaveSession(ctx context.Context, record Record) error
	ClearSession(ctx context.Context) error
}

// Session is the viewer's identity and token pair for the lifetime of the
// process. It is created empty, hydrated from the store at startup, and
// mutated only by login, token refresh, and teardown. All writes go through
// the store so a restart sees the same state.
type Session struct {
	mu     sync.Mutex
	store  Store
	record Record
	active bool
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Init loads the persisted record, if any. A missing record leaves the
// session anonymous; that is not an error.
func (s *Session) Init(ctx context.Context) error {
	record, found, err := s.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if found && record.Username != "" && record.AccessToken != "" && record.RefreshToken != "" {
		s.record = record
		s.active = true
	}
	return nil
}

func (s *Session) Login(ctx context.Context, username, accessToken, refreshToken string) error {
	record := Record{Username: username, AccessToken: accessToken, RefreshToken: refreshToken}
	if err := s.store.SaveSession(ctx, record); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.mu.Lock()
	s.record = record
	s.active = true
	s.mu.Unlock()
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.record = Record{}
	s.active = false
	s.mu.Unlock()
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Username
}

// AccessToken implements blogapi.TokenSource.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.AccessToken
}

// RefreshToken implements blogapi.TokenSource.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.RefreshToken
}

// StoreAccessToken implements blogapi.TokenSource. The refresh token and
// identity are untouched; only the short-lived token rotates.
func (s *Session) StoreAccessToken(token string) error {
	s.mu.Lock()
	s.record.AccessToken = token
	record := s.record
	s.mu.Unlock()
	if err := s.store.SaveSession(context.Background(), record); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}
	return nil
}

// Invalidate implements blogapi.TokenSource. Called when token refresh
// fails; the viewer reverts to anonymous.
func (s *Session) Invalidate() error {
	return s.Logout(context.Background())
}
