package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

// GormStore keeps sessions in the sessions table of the main database.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Create(ctx context.Context, sess *models.Session) error {
	return s.DB.WithContext(ctx).Create(sess).Error
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *GormStore) Destroy(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
