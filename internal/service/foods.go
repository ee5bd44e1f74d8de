package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type FoodService struct {
	Repo  *repo.GormRepo
	Index search.Index
	Now   func() time.Time
}

func (s *FoodService) ListFoods(ctx context.Context) ([]models.Food, error) {
	return s.Repo.ListActiveFoods(ctx)
}

func (s *FoodService) GetFood(ctx context.Context, id uint) (*models.Food, error) {
	food, err := s.Repo.GetFood(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return food, nil
}

func (s *FoodService) CreateFood(ctx context.Context, req transport.CreateFoodRequest) (*models.Food, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: name and category required", ErrValidation)
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	food := &models.Food{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Price:       *req.Price,
		Image:       req.Image,
		Active:      active,
		CreatedAt:   clock(s.Now),
	}
	if err := s.Repo.CreateFood(ctx, food); err != nil {
		return nil, storageErr(err)
	}
	s.reindex(ctx, food)
	return food, nil
}

func (s *FoodService) PatchFood(ctx context.Context, id uint, req transport.PatchFoodRequest) (*models.Food, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		return nil, fmt.Errorf("%w: category required", ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	food, err := s.Repo.UpdateFood(ctx, id, func(f *models.Food) {
		if req.Name != nil {
			f.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			f.Description = *req.Description
		}
		if req.Category != nil {
			f.Category = strings.TrimSpace(*req.Category)
		}
		if req.Price != nil {
			f.Price = *req.Price
		}
		if req.Image != nil {
			f.Image = *req.Image
		}
		if req.Active != nil {
			f.Active = *req.Active
		}
	})
	if err != nil {
		return nil, storageErr(err)
	}
	s.reindex(ctx, food)
	return food, nil
}

// DeleteFood deactivates the item. Orders keep their snapshot of it.
func (s *FoodService) DeleteFood(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteFood(ctx, id); err != nil {
		return storageErr(err)
	}
	if s.Index != nil {
		if err := s.Index.RemoveFood(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_remove_failed", "food_id", id, "error", err)
		}
	}
	return nil
}

// SearchFoods asks the search index first and falls back to a database scan
// when the index is disabled or unavailable.
func (s *FoodService) SearchFoods(ctx context.Context, q string, limit int) ([]models.Food, error) {
	ctx, span := tracer.Start(ctx, "FoodService.SearchFoods")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "foods.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, limit)
		if err == nil {
			return s.Repo.ActiveFoodsByIDs(ctx, ids)
		}
		if !errors.Is(err, search.ErrDisabled) {
			l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
		}
	}
	return s.Repo.SearchFoods(ctx, q, limit)
}

func (s *FoodService) reindex(ctx context.Context, food *models.Food) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexFood(ctx, *food); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "food_id", food.ID, "error", err)
	}
}
