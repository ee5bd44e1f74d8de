package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
)

type AnalyticsHTTP struct {
	Svc *service.AnalyticsService
}

func (h *AnalyticsHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHTTP) Financial(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.financial")

	fin, err := h.Svc.Financial(ctx)
	if err != nil {
		return fail(l, "financial_error", err)
	}
	return c.JSON(http.StatusOK, fin)
}

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments.list")

	payments, err := h.Svc.ListPayments(ctx)
	if err != nil {
		return fail(l, "list_payments_error", err)
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHTTP) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments.get")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "get_payment_error", err)
	}
	payment, err := h.Svc.GetPayment(ctx, id)
	if err != nil {
		return fail(l, "get_payment_error", err)
	}
	return c.JSON(http.StatusOK, payment)
}
