package service

import (
	"time"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
)

const day = 24 * time.Hour

// Trial holds the paywall rules every login and /me call is judged by.
type Trial struct {
	Days       int
	PaymentURL string
}

// DaysElapsed counts whole days since start. A start in the future counts as zero.
func DaysElapsed(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

func (t Trial) DaysLeft(trial *models.TrialStatus, now time.Time) int {
	if trial == nil {
		return 0
	}
	return max(0, t.Days-DaysElapsed(trial.StartDate, now))
}

func (t Trial) Expired(trial *models.TrialStatus, now time.Time) bool {
	if trial == nil {
		return false
	}
	return DaysElapsed(trial.StartDate, now) > t.Days
}
