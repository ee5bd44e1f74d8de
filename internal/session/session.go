// Package session keeps login state on the server. The browser only holds a
// signed cookie naming a session id; user id and role live in the Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Destroy(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type Manager struct {
	Store      Store
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
	Now        func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Start persists a new session for the user and returns the cookie that addresses it.
func (m *Manager) Start(ctx context.Context, userID uint, role models.Role) (*http.Cookie, *models.Session, error) {
	now := m.now()
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserRole:  role,
		ExpiresAt: now.Add(m.TTL),
		CreatedAt: now,
	}
	if err := m.Store.Create(ctx, s); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}

	token, err := signToken(s.ID, s.ExpiresAt, m.Secret)
	if err != nil {
		_ = m.Store.Destroy(ctx, s.ID)
		return nil, nil, fmt.Errorf("sign session: %w", err)
	}

	return CreateCookie(m.CookieName, token, "/", s.ExpiresAt, m.Secure), s, nil
}

// Resolve maps a request's cookie to its live session.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*models.Session, error) {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}
	id, err := parseToken(c.Value, m.Secret, m.now())
	if err != nil {
		return nil, ErrInvalidToken
	}

	s, err := m.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(m.now()) {
		_ = m.Store.Destroy(ctx, id)
		return nil, ErrNotFound
	}
	return s, nil
}

// End destroys the session named by the request cookie, if any. A missing or
// forged cookie is not an error; only store failures are reported.
func (m *Manager) End(ctx context.Context, r *http.Request) error {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	id, err := parseToken(c.Value, m.Secret, m.now())
	if err != nil {
		return nil
	}
	if err := m.Store.Destroy(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) ClearCookie() *http.Cookie {
	return DeleteCookie(m.CookieName, "/", m.Secure)
}
