package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUserWithTrial inserts the user and its trial record together; trial.UserID is filled in.
func (r *GormRepo) CreateUserWithTrial(ctx context.Context, user *models.User, trial *models.TrialStatus) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailTaken(tx, user.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if trial == nil {
			return nil
		}
		trial.UserID = user.ID
		return tx.Create(trial).Error
	})
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uint, apply func(*models.User)) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&user, id).Error; err != nil {
			return err
		}
		apply(&user)
		if err := emailTaken(tx, user.Email, user.ID); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser hard-deletes a user that nothing references. Trial records are
// never removed, so a user with a trial, like one with orders, is kept and
// ErrInUse is returned. Deactivate such users instead.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(forUpdate()).First(&user, id).Error; err != nil {
			return err
		}

		var orders, trials int64
		if err := tx.Model(&models.Order{}).Where("waiter_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TrialStatus{}).Where("user_id = ?", id).Count(&trials).Error; err != nil {
			return err
		}
		if orders > 0 || trials > 0 {
			return ErrInUse
		}
		return deleteByID(ctx, tx, &models.User{}, id)
	})
}

func emailTaken(tx *gorm.DB, email string, exceptID uint) error {
	var other models.User
	err := tx.Where("email = ? AND id <> ?", email, exceptID).First(&other).Error
	if err == nil {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
