package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

const DefaultTableCapacity = 4

type TableService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *TableService) ListTables(ctx context.Context) ([]models.Table, error) {
	return s.Repo.ListTables(ctx)
}

func (s *TableService) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	table, err := s.Repo.GetTable(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return table, nil
}

func (s *TableService) CreateTable(ctx context.Context, req transport.CreateTableRequest) (*models.Table, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	status := models.TableAvailable
	if req.Status != "" {
		status = models.TableStatus(req.Status)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	capacity := DefaultTableCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0", ErrValidation)
	}

	table := &models.Table{
		Name:      strings.TrimSpace(req.Name),
		Status:    status,
		Capacity:  capacity,
		CreatedAt: clock(s.Now),
	}
	if err := s.Repo.CreateTable(ctx, table); err != nil {
		return nil, storageErr(err)
	}
	return table, nil
}

// PatchTable is the admin edit path; it is the only way into or out of "reserved".
func (s *TableService) PatchTable(ctx context.Context, id uint, req transport.PatchTableRequest) (*models.Table, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Status != nil && !models.TableStatus(*req.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}
	if req.Capacity != nil && *req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0", ErrValidation)
	}

	table, err := s.Repo.UpdateTable(ctx, id, func(t *models.Table) {
		if req.Name != nil {
			t.Name = strings.TrimSpace(*req.Name)
		}
		if req.Status != nil {
			t.Status = models.TableStatus(*req.Status)
		}
		if req.Capacity != nil {
			t.Capacity = *req.Capacity
		}
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return table, nil
}

func (s *TableService) DeleteTable(ctx context.Context, id uint) error {
	return storageErr(s.Repo.DeleteTable(ctx, id))
}
