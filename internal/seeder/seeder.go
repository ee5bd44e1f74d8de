// Package seeder loads the bootstrap admin and sample data for new installs.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
)

type Seeder struct {
	DB     *gorm.DB
	Index  search.Index
	Logger *slog.Logger
	Now    func() time.Time
}

type Admin struct {
	Email    string
	Password string
}

var sampleTables = []models.Table{
	{Name: "Mesa 01", Capacity: 4},
	{Name: "Mesa 02", Capacity: 4},
	{Name: "Mesa 03", Capacity: 6},
	{Name: "Mesa 04", Capacity: 2},
	{Name: "Mesa 05", Capacity: 8},
}

var sampleFoods = []models.Food{
	{Name: "Hambúrguer Artesanal", Description: "Hambúrguer 180g com queijo, alface, tomate e batata frita", Category: "Pratos Principais", Price: models.MustMoney("28.90"), Image: "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=300"},
	{Name: "Pizza Margherita", Description: "Molho de tomate, mussarela, manjericão fresco", Category: "Pratos Principais", Price: models.MustMoney("32.90"), Image: "https://images.unsplash.com/photo-1604382354936-07c5d9983bd3?w=300"},
	{Name: "Salada Caesar", Description: "Mix de folhas, croutons, parmesão e molho caesar", Category: "Entradas", Price: models.MustMoney("18.90"), Image: "https://images.unsplash.com/photo-1551248429-40975aa4de74?w=300"},
	{Name: "Refrigerante Lata", Description: "Coca-Cola, Pepsi ou Guaraná", Category: "Bebidas", Price: models.MustMoney("5.90"), Image: "https://images.unsplash.com/photo-1581636625402-29b2a704ef13?w=300"},
	{Name: "Suco Natural", Description: "Laranja, limão ou acerola", Category: "Bebidas", Price: models.MustMoney("8.90"), Image: "https://images.unsplash.com/photo-1613478223719-2ab802602423?w=300"},
	{Name: "Pudim de Leite", Description: "Pudim caseiro com calda de caramelo", Category: "Sobremesas", Price: models.MustMoney("12.90"), Image: "https://images.unsplash.com/photo-1551024506-0bccd828d307?w=300"},
}

func (s *Seeder) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Seeder) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Run applies every seeder. It is safe to run repeatedly.
func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	if err := s.Admin(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.Tables(ctx); err != nil {
		return fmt.Errorf("seed tables: %w", err)
	}
	if err := s.Foods(ctx); err != nil {
		return fmt.Errorf("seed foods: %w", err)
	}
	return nil
}

// Admin creates the admin account when the email is free and makes sure it
// has a trial record. An existing account keeps its password.
func (s *Seeder) Admin(ctx context.Context, admin Admin) error {
	now := s.now()
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", admin.Email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pw, err := hash.HashPassword(admin.Password)
			if err != nil {
				return err
			}
			user = models.User{
				Email:        admin.Email,
				PasswordHash: pw,
				Name:         "Administrador",
				Role:         models.RoleAdmin,
				Active:       true,
				CreatedAt:    now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			s.logger().Info("seeded admin", "email", admin.Email)
		case err != nil:
			return err
		}

		var trials int64
		if err := tx.Model(&models.TrialStatus{}).Where("user_id = ?", user.ID).Count(&trials).Error; err != nil {
			return err
		}
		if trials > 0 {
			return nil
		}
		return tx.Create(&models.TrialStatus{UserID: user.ID, StartDate: now, Active: true, CreatedAt: now}).Error
	})
}

// Tables inserts Mesa 01..05, skipping names that already exist.
func (s *Seeder) Tables(ctx context.Context) error {
	now := s.now()
	rows := make([]models.Table, len(sampleTables))
	for i, t := range sampleTables {
		t.Status = models.TableAvailable
		t.CreatedAt = now
		rows[i] = t
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return res.Error
	}
	s.logger().Info("seeded tables", "inserted", res.RowsAffected)
	return nil
}

// Foods inserts the sample menu only into an empty catalogue.
func (s *Seeder) Foods(ctx context.Context) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Food{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.logger().Info("menu already present, skipping sample foods", "count", count)
		return nil
	}

	now := s.now()
	rows := make([]models.Food, len(sampleFoods))
	for i, f := range sampleFoods {
		f.Active = true
		f.CreatedAt = now
		rows[i] = f
	}
	if err := s.DB.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}

	if s.Index != nil {
		for _, f := range rows {
			if err := s.Index.IndexFood(ctx, f); err != nil && !errors.Is(err, search.ErrDisabled) {
				s.logger().Warn("index sample food failed", "food_id", f.ID, "error", err)
			}
		}
	}
	s.logger().Info("seeded foods", "inserted", len(rows))
	return nil
}
