package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type FoodHTTP struct {
	Svc *service.FoodService
}

func (h *FoodHTTP) ListFoods(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.list")

	foods, err := h.Svc.ListFoods(ctx)
	if err != nil {
		return fail(l, "list_foods_error", err)
	}
	return c.JSON(http.StatusOK, foods)
}

func (h *FoodHTTP) GetFood(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.get")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "get_food_error", err)
	}
	food, err := h.Svc.GetFood(ctx, id)
	if err != nil {
		return fail(l, "get_food_error", err)
	}
	return c.JSON(http.StatusOK, food)
}

func (h *FoodHTTP) SearchFoods(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.search")

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	foods, err := h.Svc.SearchFoods(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return fail(l, "search_foods_error", err)
	}
	return c.JSON(http.StatusOK, foods)
}

func (h *FoodHTTP) CreateFood(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.create")

	var req transport.CreateFoodRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_food_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	food, err := h.Svc.CreateFood(ctx, req)
	if err != nil {
		return fail(l, "create_food_error", err)
	}

	l.Info("create_food_success", "food_id", food.ID)
	return c.JSON(http.StatusCreated, food)
}

func (h *FoodHTTP) PatchFood(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.patch")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "patch_food_error", err)
	}
	var req transport.PatchFoodRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_food_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid data")
	}

	food, err := h.Svc.PatchFood(ctx, id, req)
	if err != nil {
		return fail(l, "patch_food_error", err)
	}

	l.Info("patch_food_success", "food_id", food.ID)
	return c.JSON(http.StatusOK, food)
}

func (h *FoodHTTP) DeleteFood(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "foods.delete")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_food_error", err)
	}
	if err := h.Svc.DeleteFood(ctx, id); err != nil {
		return fail(l, "delete_food_error", err)
	}

	l.Info("delete_food_success", "food_id", id)
	return c.JSON(http.StatusOK, transport.SuccessResponse{Success: true})
}
