package repo

import (
	"context"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func (r *GormRepo) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.DB.WithContext(ctx).Order("payment_date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormRepo) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB.WithContext(ctx).Create(payment).Error
}
