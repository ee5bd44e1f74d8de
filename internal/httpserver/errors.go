package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/service"
)

// fail logs the failure under event and converts err into the HTTP error the
// client sees. Messages are generic; details only go to the log.
func fail(l *slog.Logger, event string, err error) error {
	var expired *service.TrialExpiredError

	code, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.As(err, &expired):
		l.Warn(event, "status", http.StatusPaymentRequired, "reason", "trial expired")
		return echo.NewHTTPError(http.StatusPaymentRequired, echo.Map{
			"message":    "trial expired",
			"paymentUrl": expired.PaymentURL,
		})
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, "invalid data"
	case errors.Is(err, service.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrNotAuthenticated):
		code, msg = http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, service.ErrUserNotFound):
		code, msg = http.StatusUnauthorized, "user not found"
	case errors.Is(err, service.ErrForbidden):
		code, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	}

	if code >= 500 {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrValidation
	}
	return uint(id), nil
}
