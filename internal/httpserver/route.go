package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/db"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/metrics"
)

type Deps struct {
	DB *gorm.DB

	AuthHandler      *AuthHTTP
	UserHandler      *UserHTTP
	FoodHandler      *FoodHTTP
	TableHandler     *TableHTTP
	OrderHandler     *OrderHTTP
	AnalyticsHandler *AnalyticsHTTP
	PaymentHandler   *PaymentHTTP

	AuthMW      *auth.SessionAuth
	Metrics     *metrics.Metrics
	MetricsPath string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil && d.MetricsPath != "" {
		e.GET(d.MetricsPath, d.Metrics.Handler())
	}

	requireAuth, requireAdmin := d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin

	api := e.Group("/api")

	authG := api.Group("/auth")
	authG.POST("/login", d.AuthHandler.Login)
	authG.POST("/logout", d.AuthHandler.LogOut, requireAuth)
	authG.GET("/me", d.AuthHandler.Me, requireAuth)

	users := api.Group("/users", requireAdmin)
	users.GET("", d.UserHandler.ListUsers)
	users.POST("", d.UserHandler.CreateUser)
	users.PUT("/:id", d.UserHandler.PatchUser)
	users.PATCH("/:id", d.UserHandler.PatchUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	foods := api.Group("/foods")
	foods.GET("", d.FoodHandler.ListFoods, requireAuth)
	foods.GET("/search", d.FoodHandler.SearchFoods, requireAuth)
	foods.GET("/:id", d.FoodHandler.GetFood, requireAuth)
	foods.POST("", d.FoodHandler.CreateFood, requireAdmin)
	foods.PUT("/:id", d.FoodHandler.PatchFood, requireAdmin)
	foods.PATCH("/:id", d.FoodHandler.PatchFood, requireAdmin)
	foods.DELETE("/:id", d.FoodHandler.DeleteFood, requireAdmin)

	tables := api.Group("/tables")
	tables.GET("", d.TableHandler.ListTables, requireAuth)
	tables.POST("", d.TableHandler.CreateTable, requireAdmin)
	tables.PUT("/:id", d.TableHandler.PatchTable, requireAdmin)
	tables.PATCH("/:id", d.TableHandler.PatchTable, requireAdmin)
	tables.DELETE("/:id", d.TableHandler.DeleteTable, requireAdmin)

	orders := api.Group("/orders")
	orders.GET("", d.OrderHandler.ListOrders, requireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, requireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, requireAuth)
	orders.PUT("/:id", d.OrderHandler.PatchOrder, requireAuth)
	orders.PATCH("/:id", d.OrderHandler.PatchOrder, requireAuth)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder, requireAdmin)

	analytics := api.Group("/analytics", requireAdmin)
	analytics.GET("/stats", d.AnalyticsHandler.Stats)
	analytics.GET("/financial", d.AnalyticsHandler.Financial)

	payments := api.Group("/payments", requireAdmin)
	payments.GET("", d.PaymentHandler.ListPayments)
	payments.GET("/:id", d.PaymentHandler.GetPayment)
}
