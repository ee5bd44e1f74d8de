package models

import (
	"time"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleWaiter  Role = "waiter"
	RoleCashier Role = "cashier"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleCashier:
		return true
	}
	return false
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ReleasesTable reports whether moving an order into this status frees its table.
// Cancelled orders keep the table occupied until an admin deletes the order.
func (s OrderStatus) ReleasesTable() bool {
	return s == OrderDelivered
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Name         string    `gorm:"not null"                  json:"name"`
	Role         Role      `gorm:"not null;default:waiter"   json:"role"`
	Active       bool      `gorm:"not null"                  json:"active"`
	CreatedAt    time.Time `                                 json:"createdAt"`
}

type TrialStatus struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"userId"`
	StartDate time.Time `gorm:"not null"                 json:"startDate"`
	Active    bool      `gorm:"not null"                 json:"active"`
	CreatedAt time.Time `                                json:"createdAt"`
}

func (TrialStatus) TableName() string { return "trial_status" }

type Table struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name      string      `gorm:"uniqueIndex;not null"       json:"name"`
	Status    TableStatus `gorm:"not null;default:available" json:"status"`
	Capacity  int         `gorm:"not null;default:4"         json:"capacity"`
	CreatedAt time.Time   `                                  json:"createdAt"`
}

type Food struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string    `gorm:"not null"                    json:"name"`
	Description string    `                                   json:"description"`
	Category    string    `gorm:"index;not null"              json:"category"`
	Price       Money     `gorm:"type:decimal(10,2);not null" json:"price"`
	Image       string    `                                   json:"image"`
	Active      bool      `gorm:"index;not null"              json:"active"`
	CreatedAt   time.Time `                                   json:"createdAt"`
}

// SoftDeleteColumn marks Food as deactivated rather than removed, so order
// snapshots that mention it keep resolving.
func (Food) SoftDeleteColumn() string { return "active" }

// OrderItem is a line snapshot: name and price are copied at order time.
type OrderItem struct {
	FoodID       uint   `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Price        Money  `json:"price"`
	Observations string `json:"observations,omitempty"`
}

type Order struct {
	ID        uint                           `gorm:"primaryKey;autoIncrement"     json:"id"`
	TableID   uint                           `gorm:"index;not null"               json:"tableId"`
	WaiterID  uint                           `gorm:"index;not null"               json:"waiterId"`
	Items     datatypes.JSONSlice[OrderItem] `gorm:"not null"                     json:"items"`
	Status    OrderStatus                    `gorm:"index;not null;default:pending" json:"status"`
	Total     Money                          `gorm:"type:decimal(10,2);not null"  json:"total"`
	Notes     string                         `                                    json:"notes"`
	CreatedAt time.Time                      `gorm:"index"                        json:"createdAt"`
	UpdatedAt time.Time                      `                                    json:"updatedAt"`
}

type Payment struct {
	ID          uint          `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID     *uint         `gorm:"index"                        json:"orderId"`
	Amount      Money         `gorm:"type:decimal(10,2);not null"  json:"amount"`
	PaymentDate time.Time     `gorm:"index;not null"               json:"paymentDate"`
	Status      PaymentStatus `gorm:"not null;default:completed"   json:"status"`
	Method      string        `                                    json:"method"`
}

// Session is the server-side half of a login; the cookie only carries ID.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index;not null"`
	UserRole  Role      `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// SoftDeletable is implemented by entities whose delete only flips a boolean column to false.
type SoftDeletable interface {
	SoftDeleteColumn() string
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&TrialStatus{},
		&Table{},
		&Food{},
		&Order{},
		&Payment{},
		&Session{},
	}
}
