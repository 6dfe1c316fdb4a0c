// Package session keeps the signed-in user and their bearer token between
// CLI invocations. Presence of a session is the only local authentication
// check; the server remains the authority on whether the token is valid.
package session

import (
	"context"
	"errors"
	"sync"

	"bank-dashboard/internal/dto"
)

// ErrNoSession is returned by stores when nothing has been saved.
var ErrNoSession = errors.New("no active session")

// Session is persisted as a single {user, token} document, the same shape the
// login endpoint returns.
type Session struct {
	User  dto.UserResponse `json:"user"`
	Token string           `json:"token"`
}

// FromLogin builds a session out of a login response.
func FromLogin(resp *dto.LoginResponse) *Session {
	return &Session{User: resp.User, Token: resp.Token}
}

// Store persists at most one session.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// Manager caches the current session in memory in front of a Store. It is
// safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current *Session
	loaded  bool
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Current returns the active session, reading through to the store the first
// time. A store error is treated as signed out.
func (m *Manager) Current(ctx context.Context) (*Session, bool) {
	m.mu.RLock()
	if m.loaded {
		s := m.current
		m.mu.RUnlock()
		return s, s != nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		s, err := m.store.Load(ctx)
		if err != nil {
			s = nil
		}
		m.current = s
		m.loaded = true
	}
	return m.current, m.current != nil
}

// Token returns the bearer token of the active session, or "".
func (m *Manager) Token(ctx context.Context) string {
	if s, ok := m.Current(ctx); ok {
		return s.Token
	}
	return ""
}

// Set replaces the active session and persists it.
func (m *Manager) Set(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return errors.New("session requires a token")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	m.current = s
	m.loaded = true
	return nil
}

// Clear drops the active session. The in-memory copy is dropped even when the
// store fails so the caller is signed out either way.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.loaded = true
	return m.store.Clear(ctx)
}

type contextKey struct{}

// WithSession carries an explicit session on ctx. It takes precedence over the
// manager when the client attaches credentials.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
