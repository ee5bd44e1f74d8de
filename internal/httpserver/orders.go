package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	userID, ok := auth.UserID(c)
	if !ok {
		return fail(l, "list_orders_error", service.ErrNotAuthenticated)
	}
	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	userID, ok := auth.UserID(c)
	if !ok {
		return fail(l, "get_order_error", service.ErrNotAuthenticated)
	}
	id, err := parseID(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create")

	waiterID, ok := auth.UserID(c)
	if !ok {
		return fail(l, "create_order_error", service.ErrNotAuthenticated)
	}
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	order, err := h.Svc.CreateOrder(ctx, req, waiterID)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "table_id", order.TableID, "waiter_id", waiterID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) PatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.patch")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "patch_order_error", err)
	}
	var req transport.PatchOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	order, err := h.Svc.PatchOrder(ctx, id, req)
	if err != nil {
		return fail(l, "patch_order_error", err)
	}

	l.Info("patch_order_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.delete")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_order_error", err)
	}
	if err := h.Svc.DeleteOrder(ctx, id); err != nil {
		return fail(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.JSON(http.StatusOK, transport.SuccessResponse{Success: true})
}
