package transport

import (
	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public profile returned by the auth endpoints.
type UserResponse struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

type AuthResponse struct {
	User          UserResponse `json:"user"`
	TrialDaysLeft int          `json:"trialDaysLeft"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

type PatchUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

type CreateFoodRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Price       *models.Money `json:"price"`
	Image       string        `json:"image"`
	Active      *bool         `json:"active"`
}

type PatchFoodRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Category    *string       `json:"category"`
	Price       *models.Money `json:"price"`
	Image       *string       `json:"image"`
	Active      *bool         `json:"active"`
}

type CreateTableRequest struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Capacity *int   `json:"capacity"`
}

type PatchTableRequest struct {
	Name     *string `json:"name"`
	Status   *string `json:"status"`
	Capacity *int    `json:"capacity"`
}

type OrderItemRequest struct {
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Quantity     int           `json:"quantity"`
	Price        *models.Money `json:"price"`
	Observations string        `json:"observations"`
}

// CreateOrderRequest has no waiter field: the waiter is always the session user.
type CreateOrderRequest struct {
	TableID uint               `json:"tableId"`
	Items   []OrderItemRequest `json:"items"`
	Total   *models.Money      `json:"total"`
	Notes   string             `json:"notes"`
	Status  string             `json:"status"`
}

type PatchOrderRequest struct {
	Status *string            `json:"status"`
	Notes  *string            `json:"notes"`
	Items  []OrderItemRequest `json:"items"`
	Total  *models.Money      `json:"total"`
}

type StatsResponse struct {
	TodayOrders    int64  `json:"todayOrders"`
	TodayRevenue   string `json:"todayRevenue"`
	OccupiedTables string `json:"occupiedTables"`
	AvgOrderTime   string `json:"avgOrderTime"`
}

type FinancialResponse struct {
	Today     string `json:"today"`
	Month     string `json:"month"`
	AvgTicket string `json:"avgTicket"`
}
