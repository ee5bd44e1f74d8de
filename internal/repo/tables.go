package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

func (r *GormRepo) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *GormRepo) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := r.DB.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *GormRepo) CreateTable(ctx context.Context, table *models.Table) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tableNameTaken(tx, table.Name, 0); err != nil {
			return err
		}
		return tx.Create(table).Error
	})
}

func (r *GormRepo) UpdateTable(ctx context.Context, id uint, apply func(*models.Table)) (*models.Table, error) {
	var table models.Table
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate()).First(&table, id).Error; err != nil {
			return err
		}
		apply(&table)
		if err := tableNameTaken(tx, table.Name, table.ID); err != nil {
			return err
		}
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *GormRepo) DeleteTable(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Order{}).Where("table_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
		return deleteByID(ctx, tx, &models.Table{}, id)
	})
}

func (r *GormRepo) TableOccupancy(ctx context.Context) (occupied, total int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&models.Table{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.DB.WithContext(ctx).Model(&models.Table{}).
		Where("status = ?", models.TableOccupied).
		Count(&occupied).Error; err != nil {
		return 0, 0, err
	}
	return occupied, total, nil
}

func setTableStatus(tx *gorm.DB, id uint, status models.TableStatus) error {
	return tx.Model(&models.Table{}).Where("id = ?", id).Update("status", status).Error
}

func tableNameTaken(tx *gorm.DB, name string, exceptID uint) error {
	var other models.Table
	err := tx.Where("name = ? AND id <> ?", name, exceptID).First(&other).Error
	if err == nil {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
