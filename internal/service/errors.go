package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/repo"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotAuthenticated   = errors.New("not authenticated")   // 401
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
	ErrUserNotFound       = errors.New("user not found")      // 401
	ErrTrialExpired       = errors.New("trial expired")       // 402
	ErrForbidden          = errors.New("forbidden")           // 403
	ErrNotFound           = errors.New("not found")           // 404
)

// TrialExpiredError carries where the client should be sent to pay.
type TrialExpiredError struct {
	PaymentURL string
}

func (e *TrialExpiredError) Error() string { return ErrTrialExpired.Error() }

func (e *TrialExpiredError) Unwrap() error { return ErrTrialExpired }

// storageErr folds repository errors into the service taxonomy.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: already exists", ErrValidation)
	case errors.Is(err, repo.ErrInUse):
		return fmt.Errorf("%w: still referenced by orders or a trial record", ErrValidation)
	case errors.Is(err, repo.ErrReferenceMissing):
		return fmt.Errorf("%w: referenced record does not exist", ErrValidation)
	}
	return err
}
