package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.create")

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	user, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return fail(l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.patch")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "patch_user_error", err)
	}
	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	user, err := h.Svc.PatchUser(ctx, id, req)
	if err != nil {
		return fail(l, "patch_user_error", err)
	}

	l.Info("patch_user_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_user_error", err)
	}
	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.SuccessResponse{Success: true})
}
