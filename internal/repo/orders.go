package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

// CreateOrder inserts the order and marks its table occupied in one transaction.
// The table row is locked for the duration, but its current status is not checked:
// opening a second order on an occupied table is allowed.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Clauses(forUpdate()).First(&table, order.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReferenceMissing
			}
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return setTableStatus(tx, table.ID, models.TableOccupied)
	})
}

// ListOrders returns orders newest first; a non-nil waiterID restricts the list to that waiter.
func (r *GormRepo) ListOrders(ctx context.Context, waiterID *uint) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if waiterID != nil {
		q = q.Where("waiter_id = ?", *waiterID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder applies the change and, when release is set, frees the order's table
// within the same transaction.
func (r *GormRepo) UpdateOrder(ctx context.Context, id uint, apply func(*models.Order), release bool) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&order, id).Error; err != nil {
			return err
		}
		apply(&order)
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if !release {
			return nil
		}
		return setTableStatus(tx, order.TableID, models.TableAvailable)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes the order and releases its table whatever the order's status was.
func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&order, id).Error; err != nil {
			return err
		}
		if err := deleteByID(ctx, tx, &models.Order{}, id); err != nil {
			return err
		}
		return setTableStatus(tx, order.TableID, models.TableAvailable)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderTotals struct {
	TotalSum   models.Money
	OrderCount int64
}

// SumOrders aggregates totals of orders created in [from, to). Zero times leave that side open.
func (r *GormRepo) SumOrders(ctx context.Context, from, to time.Time) (OrderTotals, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	var out OrderTotals
	if err := q.Select("COALESCE(SUM(total), 0) AS total_sum, COUNT(*) AS order_count").Scan(&out).Error; err != nil {
		return OrderTotals{}, err
	}
	return out, nil
}

// DeliveredBetween lists delivered orders created in [from, to).
func (r *GormRepo) DeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.OrderDelivered, from, to).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
