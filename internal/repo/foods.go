package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

// ListActiveFoods returns the menu: active items by category, then name.
func (r *GormRepo) ListActiveFoods(ctx context.Context) ([]models.Food, error) {
	var foods []models.Food
	if err := r.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("category ASC, name ASC").
		Find(&foods).Error; err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *GormRepo) GetFood(ctx context.Context, id uint) (*models.Food, error) {
	var food models.Food
	if err := r.DB.WithContext(ctx).First(&food, id).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

// ActiveFoodsByIDs keeps the order of ids, skipping ids that are missing or inactive.
func (r *GormRepo) ActiveFoodsByIDs(ctx context.Context, ids []uint) ([]models.Food, error) {
	if len(ids) == 0 {
		return []models.Food{}, nil
	}
	var found []models.Food
	if err := r.DB.WithContext(ctx).Where("id IN ? AND active = ?", ids, true).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Food, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	out := make([]models.Food, 0, len(found))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// SearchFoods is the database fallback when no search index is configured.
func (r *GormRepo) SearchFoods(ctx context.Context, q string, limit int) ([]models.Food, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	var foods []models.Food
	if err := r.DB.WithContext(ctx).
		Where("active = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern, pattern).
		Order("category ASC, name ASC").
		Limit(limit).
		Find(&foods).Error; err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *GormRepo) CreateFood(ctx context.Context, food *models.Food) error {
	return r.DB.WithContext(ctx).Create(food).Error
}

func (r *GormRepo) UpdateFood(ctx context.Context, id uint, apply func(*models.Food)) (*models.Food, error) {
	var food models.Food
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&food, id).Error; err != nil {
			return err
		}
		apply(&food)
		return tx.Save(&food).Error
	})
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *GormRepo) DeleteFood(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.DB, &models.Food{}, id)
}
