package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type TableHTTP struct {
	Svc *service.TableService
}

func (h *TableHTTP) ListTables(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tables.list")

	tables, err := h.Svc.ListTables(ctx)
	if err != nil {
		return fail(l, "list_tables_error", err)
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *TableHTTP) CreateTable(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tables.create")

	var req transport.CreateTableRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_table_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	table, err := h.Svc.CreateTable(ctx, req)
	if err != nil {
		return fail(l, "create_table_error", err)
	}

	l.Info("create_table_success", "table_id", table.ID)
	return c.JSON(http.StatusCreated, table)
}

func (h *TableHTTP) PatchTable(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tables.patch")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "patch_table_error", err)
	}
	var req transport.PatchTableRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_table_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	table, err := h.Svc.PatchTable(ctx, id, req)
	if err != nil {
		return fail(l, "patch_table_error", err)
	}

	l.Info("patch_table_success", "table_id", table.ID, "table_status", table.Status)
	return c.JSON(http.StatusOK, table)
}

func (h *TableHTTP) DeleteTable(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tables.delete")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_table_error", err)
	}
	if err := h.Svc.DeleteTable(ctx, id); err != nil {
		return fail(l, "delete_table_error", err)
	}

	l.Info("delete_table_success", "table_id", id)
	return c.JSON(http.StatusOK, transport.SuccessResponse{Success: true})
}
