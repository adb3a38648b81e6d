package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/session"
)

// ContextAuth is the key for *session.Auth in gin context.
const ContextAuth = "auth"

// SessionValidator is the part of session.Manager the middleware uses.
type SessionValidator interface {
	CookieName() string
	Validate(ctx context.Context, id string) (*session.Session, error)
	Cookie(s *session.Session) *http.Cookie
	BlankCookie() *http.Cookie
}

// UserLoader loads a user with its role profiles.
type UserLoader interface {
	LoadUserData(ctx context.Context, userID uuid.UUID) (*models.UserData, error)
}

// Session validates the session cookie on every request. A fresh session re-sends the cookie,
// an invalid or orphaned one clears it. Store failures keep the cookie so an outage does not
// log everyone out; those requests continue anonymously.
func Session(sessions SessionValidator, users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessions.CookieName())
		if err != nil || id == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		s, err := sessions.Validate(ctx, id)
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) {
				http.SetCookie(c.Writer, sessions.BlankCookie())
			} else {
				logger.Warn("session validation failed", zap.Error(err))
			}
			c.Next()
			return
		}
		if s.Fresh {
			http.SetCookie(c.Writer, sessions.Cookie(s))
		}
		user, err := users.LoadUserData(ctx, s.UserID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				http.SetCookie(c.Writer, sessions.BlankCookie())
			} else {
				logger.Warn("load session user failed", zap.Error(err), zap.String("user_id", s.UserID.String()))
			}
			c.Next()
			return
		}
		c.Set(ContextAuth, &session.Auth{Session: s, User: user})
		c.Next()
	}
}

// CurrentAuth returns the authenticated session, if any.
func CurrentAuth(c *gin.Context) (*session.Auth, bool) {
	v, ok := c.Get(ContextAuth)
	if !ok {
		return nil, false
	}
	a, ok := v.(*session.Auth)
	return a, ok && a != nil
}

// MustAuth returns the authenticated session; only call it behind RequireRole or RequirePageAuth.
func MustAuth(c *gin.Context) *session.Auth {
	return c.MustGet(ContextAuth).(*session.Auth)
}
