package repo

import (
	"context"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

// GetTrialStatus returns the oldest trial record for the user.
func (r *GormRepo) GetTrialStatus(ctx context.Context, userID uint) (*models.TrialStatus, error) {
	var trial models.TrialStatus
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").First(&trial).Error; err != nil {
		return nil, err
	}
	return &trial, nil
}

func (r *GormRepo) CreateTrialStatus(ctx context.Context, trial *models.TrialStatus) error {
	return r.DB.WithContext(ctx).Create(trial).Error
}

func (r *GormRepo) SetTrialActive(ctx context.Context, userID uint, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.TrialStatus{}).
		Where("user_id = ?", userID).
		Update("active", active).Error
}
