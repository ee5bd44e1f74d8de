package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/db/dbtest"
	"github.com/Skotchmaster/restaurant_pos/internal/events/eventstest"
	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

const testPaymentURL = "https://pay.example.test/checkout"

type testEnv struct {
	Repo      *repo.GormRepo
	Events    *eventstest.Recorder
	Now       time.Time
	Auth      *AuthService
	Users     *UserService
	Foods     *FoodService
	Tables    *TableService
	Orders    *OrderService
	Analytics *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		Repo:   repo.New(dbtest.New(t)),
		Events: &eventstest.Recorder{},
		Now:    time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.Now }

	env.Auth = &AuthService{
		Repo: env.Repo,
		Sessions: &session.Manager{
			Store:      &session.GormStore{DB: env.Repo.DB},
			Secret:     []byte("test-session-secret"),
			CookieName: "sid",
			TTL:        time.Hour,
			Now:        now,
		},
		Events: env.Events,
		Trial:  Trial{Days: 7, PaymentURL: testPaymentURL},
		Now:    now,
	}
	env.Users = &UserService{Repo: env.Repo, Now: now}
	env.Foods = &FoodService{Repo: env.Repo, Index: search.Disabled{}, Now: now}
	env.Tables = &TableService{Repo: env.Repo, Now: now}
	env.Orders = &OrderService{Repo: env.Repo, Events: env.Events, Now: now}
	env.Analytics = &AnalyticsService{Repo: env.Repo, Location: time.UTC, CurrencyPrefix: "R$ ", Now: now}
	return env
}

// seedUser creates a user directly, with a trial that started trialStart ago
// (no trial record when trialStart is negative).
func (env *testEnv) seedUser(t *testing.T, email string, role models.Role, trialStart time.Duration) *models.User {
	t.Helper()

	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: pw, Name: "Test " + string(role), Role: role, Active: true, CreatedAt: env.Now}
	var trial *models.TrialStatus
	if trialStart >= 0 {
		trial = &models.TrialStatus{StartDate: env.Now.Add(-trialStart), Active: true, CreatedAt: env.Now}
	}
	require.NoError(t, env.Repo.CreateUserWithTrial(context.Background(), user, trial))
	return user
}

func (env *testEnv) seedTable(t *testing.T, name string) *models.Table {
	t.Helper()

	table, err := env.Tables.CreateTable(context.Background(), transport.CreateTableRequest{Name: name})
	require.NoError(t, err)
	return table
}

func money(s string) *models.Money {
	m := models.MustMoney(s)
	return &m
}

func ptr[T any](v T) *T { return &v }

func orderRequest(tableID uint, total string) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		TableID: tableID,
		Items:   []transport.OrderItemRequest{{ID: 1, Name: "X", Quantity: 2, Price: money("10.00")}},
		Total:   money(total),
	}
}
