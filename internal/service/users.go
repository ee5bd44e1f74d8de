package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

type UserService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

// CreateUser stores the user and opens its trial window starting now.
func (s *UserService) CreateUser(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	role := models.RoleWaiter
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	if err := validateUser(req.Email, req.Name, req.Password, role); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	now := clock(s.Now)
	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: pwHash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Active:       active,
		CreatedAt:    now,
	}
	trial := &models.TrialStatus{StartDate: now, Active: true, CreatedAt: now}

	if err := s.Repo.CreateUserWithTrial(ctx, user, trial); err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *UserService) PatchUser(ctx context.Context, id uint, req transport.PatchUserRequest) (*models.User, error) {
	if req.Email != nil {
		if !validEmail(strings.TrimSpace(*req.Email)) {
			return nil, fmt.Errorf("%w: invalid email", ErrValidation)
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Role != nil && !models.Role(*req.Role).Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *req.Role)
	}

	var pwHash string
	if req.Password != nil && *req.Password != "" {
		h, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		pwHash = h
	}

	user, err := s.Repo.UpdateUser(ctx, id, func(u *models.User) {
		if req.Email != nil {
			u.Email = strings.TrimSpace(*req.Email)
		}
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Role != nil {
			u.Role = models.Role(*req.Role)
		}
		if req.Active != nil {
			u.Active = *req.Active
		}
		if pwHash != "" {
			u.PasswordHash = pwHash
		}
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return storageErr(s.Repo.DeleteUser(ctx, id))
}

func validateUser(email, name, password string, role models.Role) error {
	if !validEmail(strings.TrimSpace(email)) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password required", ErrValidation)
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return nil
}

// validEmail accepts a bare address only, not the "Name <addr>" form.
func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
