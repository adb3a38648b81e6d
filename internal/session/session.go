package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/pkg/utils"
)

// ErrInvalidSession is returned by Validate for unknown or expired session ids.
var ErrInvalidSession = errors.New("invalid session")

// Session is a server-side login session opened for one role.
type Session struct {
	ID        string      `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
	// Fresh is set by Create and by Validate when the expiry was extended; the cookie must be re-sent.
	Fresh bool `json:"-"`
}

// Auth is the authenticated request context: the session and the user with its profiles.
type Auth struct {
	Session *Session
	User    *models.UserData
}

// ProfileID returns the id of the profile matching the session role.
func (a *Auth) ProfileID() (uuid.UUID, bool) {
	if a == nil || a.Session == nil || a.User == nil {
		return uuid.Nil, false
	}
	switch a.Session.Role {
	case models.RoleParticipant:
		if a.User.Participant != nil {
			return a.User.Participant.ID, true
		}
	case models.RoleOrganiser:
		if a.User.Organiser != nil {
			return a.User.Organiser.ID, true
		}
	case models.RoleSpeaker:
		if a.User.Speaker != nil {
			return a.User.Speaker.ID, true
		}
	}
	return uuid.Nil, false
}

// Store persists sessions.
type Store interface {
	Insert(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager creates, validates and expires sessions and builds their cookies.
type Manager struct {
	store  Store
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a session manager.
func NewManager(store Store, opts Options, logger *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "event_master_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, opts: opts, logger: logger, now: time.Now}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// Create opens a new session for userID as role.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID, role models.Role) (*Session, error) {
	id, err := utils.RandomToken(25)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	s := &Session{
		ID:        id,
		UserID:    userID,
		Role:      role,
		ExpiresAt: m.now().Add(m.opts.TTL).UTC(),
		Fresh:     true,
	}
	if err := m.store.Insert(ctx, s); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// Validate returns the session for id. Expired sessions are deleted; a session in the second
// half of its lifetime is extended to a full lifetime and marked Fresh.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidSession
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	now := m.now()
	if !now.Before(s.ExpiresAt) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("delete expired session", zap.Error(err))
		}
		return nil, ErrInvalidSession
	}
	if s.ExpiresAt.Sub(now) < m.opts.TTL/2 {
		s.ExpiresAt = now.Add(m.opts.TTL).UTC()
		if err := m.store.UpdateExpiry(ctx, id, s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("extend session: %w", err)
		}
		s.Fresh = true
	}
	return s, nil
}

// Invalidate deletes one session.
func (m *Manager) Invalidate(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// InvalidateUser deletes every session of a user.
func (m *Manager) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return m.store.DeleteByUser(ctx, userID)
}

// PurgeExpired removes sessions past their expiry and returns how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// Cookie returns the browser-session cookie carrying s.ID. No Max-Age is set.
func (m *Manager) Cookie(s *Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// BlankCookie returns a cookie that clears the session cookie.
func (m *Manager) BlankCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
