package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

var (
	ErrDuplicate        = errors.New("duplicate")
	ErrInUse            = errors.New("still referenced")
	ErrReferenceMissing = errors.New("referenced row does not exist")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// deleteByID removes the row, or only deactivates it when the model is models.SoftDeletable.
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint) error {
	var res *gorm.DB
	if sd, ok := model.(models.SoftDeletable); ok {
		res = db.WithContext(ctx).Model(model).Where("id = ?", id).Update(sd.SoftDeleteColumn(), false)
	} else {
		res = db.WithContext(ctx).Delete(model, id)
	}

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
