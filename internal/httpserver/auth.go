package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/metrics"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Sessions *session.Manager
	Metrics  *metrics.Metrics
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.Metrics.Login(loginOutcome(err))
		return fail(l, "login_failed", err)
	}
	h.Metrics.Login(metrics.LoginSuccess)

	c.SetCookie(res.Cookie)
	l.Info("login_successful", "user_id", res.User.ID, "trial_days_left", res.TrialDaysLeft)
	return c.JSON(http.StatusOK, transport.AuthResponse{
		User:          transport.NewUserResponse(res.User),
		TrialDaysLeft: res.TrialDaysLeft,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	c.SetCookie(h.Sessions.ClearCookie())
	if err := h.Svc.Logout(ctx, c.Request()); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot destroy session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.SuccessResponse{Success: true})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	userID, ok := auth.UserID(c)
	if !ok {
		return fail(l, "me_failed", service.ErrNotAuthenticated)
	}

	me, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "me_failed", err)
	}
	return c.JSON(http.StatusOK, transport.AuthResponse{
		User:          transport.NewUserResponse(me.User),
		TrialDaysLeft: me.TrialDaysLeft,
	})
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrValidation):
		return metrics.LoginInvalid
	case errors.Is(err, service.ErrTrialExpired):
		return metrics.LoginTrialExpired
	}
	return metrics.LoginError
}
