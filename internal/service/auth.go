package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/events"
	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Sessions *session.Manager
	Events   events.Publisher
	Trial    Trial
	Now      func() time.Time
}

type LoginResult struct {
	User          models.User
	TrialDaysLeft int
	Cookie        *http.Cookie
}

type MeResult struct {
	User          models.User
	TrialDaysLeft int
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.TrimSpace(email)
	if !validEmail(email) || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("login_failed", "status", 401, "reason", "unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))

	now := clock(s.Now)
	trial, err := s.trialOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if s.Trial.Expired(trial, now) {
		if trial.Active {
			if err := s.Repo.SetTrialActive(ctx, user.ID, false); err != nil {
				return nil, err
			}
			publish(ctx, s.Events, user.ID, events.Event{Type: events.TrialExpired, At: now, UserID: user.ID})
		}
		l.Warn("login_failed", "status", 402, "reason", "trial expired", "user_id", user.ID)
		return nil, &TrialExpiredError{PaymentURL: s.Trial.PaymentURL}
	}

	cookie, _, err := s.Sessions.Start(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, user.ID, events.Event{Type: events.UserLoggedIn, At: now, UserID: user.ID})

	return &LoginResult{
		User:          *user,
		TrialDaysLeft: s.Trial.DaysLeft(trial, now),
		Cookie:        cookie,
	}, nil
}

// Me re-reads the session's user and recomputes the trial window.
func (s *AuthService) Me(ctx context.Context, userID uint) (*MeResult, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	trial, err := s.trialOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &MeResult{User: *user, TrialDaysLeft: s.Trial.DaysLeft(trial, clock(s.Now))}, nil
}

// Authorize returns the user's current role from storage. The role stored in
// the session is never trusted for access decisions.
func (s *AuthService) Authorize(ctx context.Context, userID uint) (models.Role, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// Logout destroys the server-side session named by r's cookie.
func (s *AuthService) Logout(ctx context.Context, r *http.Request) error {
	return s.Sessions.End(ctx, r)
}

func (s *AuthService) trialOf(ctx context.Context, userID uint) (*models.TrialStatus, error) {
	trial, err := s.Repo.GetTrialStatus(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return trial, err
}
