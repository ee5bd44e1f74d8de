package service

import (
	"context"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
)

// PaymentService is read-only; payments are recorded outside this API.
type PaymentService struct {
	Repo *repo.GormRepo
}

func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.Repo.ListPayments(ctx)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	p, err := s.Repo.GetPayment(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}
