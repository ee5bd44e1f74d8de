package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
)

const (
	ContextSession = "session"
	ContextUserID  = "user_id"
	ContextRole    = "role"
)

type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*models.Session, error)
	ClearCookie() *http.Cookie
}

// Authorizer reports the user's current role from storage.
type Authorizer interface {
	Authorize(ctx context.Context, userID uint) (models.Role, error)
}

type SessionAuth struct {
	Sessions SessionResolver
	Authz    Authorizer
}

func NewSessionAuth(sessions SessionResolver, authz Authorizer) *SessionAuth {
	return &SessionAuth{Sessions: sessions, Authz: authz}
}

type ValidatorFunc func(c echo.Context, sess *models.Session) error

func (m *SessionAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, nil)
}

// RequireAdmin re-reads the user's role on every request, so a demotion or a
// deleted account takes effect immediately. The role cached in the session is ignored.
func (m *SessionAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, func(c echo.Context, sess *models.Session) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_admin")

		role, err := m.Authz.Authorize(c.Request().Context(), sess.UserID)
		if errors.Is(err, service.ErrUserNotFound) {
			l.Warn("access_denied", "status", 403, "reason", "user no longer exists", "user_id", sess.UserID)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		if err != nil {
			l.Error("access_check_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if role != models.RoleAdmin {
			l.Warn("access_denied", "status", 403, "reason", "not an admin", "user_id", sess.UserID, "role", role)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		c.Set(ContextRole, role)
		return nil
	})
}

func (m *SessionAuth) requireSessionWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := m.Sessions.Resolve(c.Request().Context(), c.Request())
		switch {
		case errors.Is(err, session.ErrInvalidToken):
			c.SetCookie(m.Sessions.ClearCookie())
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		case errors.Is(err, session.ErrNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		case err != nil:
			logging.FromContext(c.Request().Context()).Error("session_lookup_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		setSessionContext(c, sess)
		if validator != nil {
			if err := validator(c, sess); err != nil {
				return err
			}
		}
		return next(c)
	}
}

func setSessionContext(c echo.Context, sess *models.Session) {
	c.Set(ContextSession, sess)
	c.Set(ContextUserID, sess.UserID)
	c.Set(ContextRole, sess.UserRole)
}

// UserID returns the session user set by RequireAuth or RequireAdmin.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserID).(uint)
	return id, ok && id != 0
}
