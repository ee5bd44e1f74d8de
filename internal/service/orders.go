package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/events"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

// OrderService drives table occupancy from the order lifecycle: creating an
// order occupies its table, delivering or deleting it frees the table.
type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest, waiterID uint) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "orders.create")

	if req.TableID == 0 {
		return nil, fmt.Errorf("%w: tableId required", ErrValidation)
	}
	items, err := orderItems(req.Items)
	if err != nil {
		return nil, err
	}
	if req.Total == nil || req.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total must be >= 0", ErrValidation)
	}
	status := models.OrderPending
	if req.Status != "" {
		status = models.OrderStatus(req.Status)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	now := clock(s.Now)
	order := &models.Order{
		TableID:   req.TableID,
		WaiterID:  waiterID,
		Items:     items,
		Status:    status,
		Total:     *req.Total,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, storageErr(err)
	}
	span.SetAttributes(attribute.Int("order.id", int(order.ID)), attribute.Int("table.id", int(order.TableID)))
	l.Info("order_created", "order_id", order.ID, "table_id", order.TableID, "waiter_id", waiterID)

	publish(ctx, s.Events, order.ID,
		events.Event{Type: events.OrderCreated, At: now, OrderID: order.ID, TableID: order.TableID, UserID: waiterID, Status: string(order.Status)},
		events.Event{Type: events.TableOccupied, At: now, OrderID: order.ID, TableID: order.TableID},
	)
	return order, nil
}

// ListOrders returns every order to admins and only their own orders to everyone else.
func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	waiter, err := s.scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListOrders(ctx, waiter)
}

// GetOrder applies the same scoping as ListOrders; a foreign order is reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, id uint) (*models.Order, error) {
	waiter, err := s.scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if waiter != nil && order.WaiterID != *waiter {
		return nil, ErrNotFound
	}
	return order, nil
}

// PatchOrder applies a partial update. Setting the status to delivered frees the
// table in the same transaction; no other status touches the table.
func (s *OrderService) PatchOrder(ctx context.Context, id uint, req transport.PatchOrderRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.PatchOrder")
	defer span.End()

	if req.Status != nil && !models.OrderStatus(*req.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}
	if req.Total != nil && req.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total must be >= 0", ErrValidation)
	}
	var items []models.OrderItem
	if req.Items != nil {
		var err error
		if items, err = orderItems(req.Items); err != nil {
			return nil, err
		}
	}

	release := req.Status != nil && models.OrderStatus(*req.Status).ReleasesTable()
	now := clock(s.Now)

	order, err := s.Repo.UpdateOrder(ctx, id, func(o *models.Order) {
		if req.Status != nil {
			o.Status = models.OrderStatus(*req.Status)
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}
		if items != nil {
			o.Items = items
		}
		if req.Total != nil {
			o.Total = *req.Total
		}
		o.UpdatedAt = now
	}, release)
	if err != nil {
		return nil, storageErr(err)
	}

	evs := []events.Event{{Type: events.OrderUpdated, At: now, OrderID: order.ID, TableID: order.TableID, Status: string(order.Status)}}
	if release {
		evs = append(evs, events.Event{Type: events.TableReleased, At: now, OrderID: order.ID, TableID: order.TableID})
	}
	publish(ctx, s.Events, order.ID, evs...)
	return order, nil
}

// DeleteOrder removes the order and frees its table, whatever status the order was in.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	order, err := s.Repo.DeleteOrder(ctx, id)
	if err != nil {
		return storageErr(err)
	}

	now := clock(s.Now)
	publish(ctx, s.Events, order.ID,
		events.Event{Type: events.OrderDeleted, At: now, OrderID: order.ID, TableID: order.TableID, Status: string(order.Status)},
		events.Event{Type: events.TableReleased, At: now, OrderID: order.ID, TableID: order.TableID},
	)
	return nil
}

// scope returns nil for admins and the user's own id for everyone else.
// The role is read from storage, not from the session.
func (s *OrderService) scope(ctx context.Context, userID uint) (*uint, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, nil
	}
	return &user.ID, nil
}

func orderItems(in []transport.OrderItemRequest) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(in))
	for i, it := range in {
		if it.ID == 0 {
			return nil, fmt.Errorf("%w: item %d: id required", ErrValidation, i)
		}
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("%w: item %d: name required", ErrValidation, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d: quantity must be >= 1", ErrValidation, i)
		}
		if it.Price == nil || it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d: price must be >= 0", ErrValidation, i)
		}
		items = append(items, models.OrderItem{
			FoodID:       it.ID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			Price:        *it.Price,
			Observations: it.Observations,
		})
	}
	return items, nil
}
