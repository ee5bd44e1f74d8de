package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/db/dbtest"
	"github.com/Skotchmaster/restaurant_pos/internal/events/eventstest"
	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/middleware/metrics"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/search"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/session"
)

const paymentURL = "https://pay.example.test/checkout"

type server struct {
	e    *echo.Echo
	repo *repo.GormRepo
}

func newServer(t *testing.T) *server {
	t.Helper()

	gdb := dbtest.New(t)
	r := repo.New(gdb)
	pub := &eventstest.Recorder{}
	sessions := &session.Manager{
		Store:      &session.GormStore{DB: gdb},
		Secret:     []byte("http-test-secret"),
		CookieName: "sid",
		TTL:        time.Hour,
	}
	authSvc := &service.AuthService{
		Repo:     r,
		Sessions: sessions,
		Events:   pub,
		Trial:    service.Trial{Days: 7, PaymentURL: paymentURL},
	}
	m := metrics.New()

	e := echo.New()
	e.Use(m.Middleware())
	Register(e, &Deps{
		DB:               gdb,
		AuthHandler:      &AuthHTTP{Svc: authSvc, Sessions: sessions, Metrics: m},
		UserHandler:      &UserHTTP{Svc: &service.UserService{Repo: r}},
		FoodHandler:      &FoodHTTP{Svc: &service.FoodService{Repo: r, Index: search.Disabled{}}},
		TableHandler:     &TableHTTP{Svc: &service.TableService{Repo: r}},
		OrderHandler:     &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: pub}},
		AnalyticsHandler: &AnalyticsHTTP{Svc: &service.AnalyticsService{Repo: r, Location: time.UTC, CurrencyPrefix: "R$ "}},
		PaymentHandler:   &PaymentHTTP{Svc: &service.PaymentService{Repo: r}},
		AuthMW:           auth.NewSessionAuth(sessions, authSvc),
		Metrics:          m,
		MetricsPath:      "/metrics",
	})
	return &server{e: e, repo: r}
}

func (s *server) seedUser(t *testing.T, email string, role models.Role, trialAge time.Duration) *models.User {
	t.Helper()

	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	now := time.Now().UTC()
	user := &models.User{Email: email, PasswordHash: pw, Name: string(role), Role: role, Active: true}
	trial := &models.TrialStatus{StartDate: now.Add(-trialAge), Active: true}
	require.NoError(t, s.repo.CreateUserWithTrial(context.Background(), user, trial))
	return user
}

func (s *server) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) login(t *testing.T, email string) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login for %s set no session cookie", email)
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 2*24*time.Hour+time.Hour)

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"waiter@pos.test","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(5), body["trialDaysLeft"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "waiter@pos.test", user["email"])
	assert.Equal(t, "waiter", user["role"])
	assert.NotContains(t, user, "password")

	cookie := s.login(t, "waiter@pos.test")
	rec = s.do(t, http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), decode[map[string]any](t, rec)["trialDaysLeft"])
}

func TestLogin_Failures(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	s.seedUser(t, "old@pos.test", models.RoleWaiter, 8*24*time.Hour+time.Hour)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"email":"waiter@pos.test","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"ghost@pos.test","password":"secret123"}`, http.StatusUnauthorized},
		{"malformed body", `{"email":`, http.StatusBadRequest},
		{"missing password", `{"email":"waiter@pos.test"}`, http.StatusBadRequest},
		{"trial expired", `{"email":"old@pos.test","password":"secret123"}`, http.StatusPaymentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/login", tt.body, nil)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())
		})
	}

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"old@pos.test","password":"secret123"}`, nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, paymentURL, decode[map[string]any](t, rec)["paymentUrl"])

	wrong := decode[map[string]any](t, s.do(t, http.MethodPost, "/api/auth/login", `{"email":"waiter@pos.test","password":"nope"}`, nil))
	unknown := decode[map[string]any](t, s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ghost@pos.test","password":"nope"}`, nil))
	assert.Equal(t, wrong, unknown)
}

func TestMe_NoSession(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", "", &http.Cookie{Name: "sid", Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	cookie := s.login(t, "waiter@pos.test")

	rec := s.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])

	rec = s.do(t, http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGate(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	admin := s.login(t, "admin@pos.test")
	waiter := s.login(t, "waiter@pos.test")

	for _, path := range []string{"/api/users", "/api/analytics/stats", "/api/analytics/financial", "/api/payments"} {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, "", waiter).Code, path)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, "", admin).Code, path)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "", nil).Code, path)
	}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/tables", "", waiter).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/tables", `{"name":"Mesa 99"}`, waiter).Code)
}

func TestAdminGate_RoleRevokedMidSession(t *testing.T) {
	s := newServer(t)
	admin := s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	cookie := s.login(t, "admin@pos.test")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users", "", cookie).Code)

	_, err := s.repo.UpdateUser(context.Background(), admin.ID, func(u *models.User) {
		u.Role = models.RoleWaiter
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/users", "", cookie).Code)
}

func TestUserCRUD(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	admin := s.login(t, "admin@pos.test")

	rec := s.do(t, http.MethodPost, "/api/users", `{"email":"cashier@pos.test","name":"Caixa","password":"secret123","role":"cashier"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.NotContains(t, created, "password")
	id := int(created["id"].(float64))

	cashier := s.login(t, "cashier@pos.test")
	me := decode[map[string]any](t, s.do(t, http.MethodGet, "/api/auth/me", "", cashier))
	assert.Equal(t, float64(7), me["trialDaysLeft"])

	path := "/api/users/" + strconv.Itoa(id)
	rec = s.do(t, http.MethodPut, path, `{"name":"Caixa 2"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Caixa 2", decode[map[string]any](t, rec)["name"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/users", `{"email":"bad","name":"x","password":"secret123"}`, admin).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/users/abc", `{}`, admin).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, path, "", admin).Code, "a user with a trial record is kept")
	rec = s.do(t, http.MethodPut, path, `{"active":false}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["active"])

	plain := &models.User{Email: "plain@pos.test", PasswordHash: "x", Name: "Plain", Role: models.RoleCashier, Active: true}
	require.NoError(t, s.repo.CreateUserWithTrial(context.Background(), plain, nil))
	plainPath := "/api/users/" + strconv.Itoa(int(plain.ID))
	rec = s.do(t, http.MethodDelete, plainPath, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, plainPath, "", admin).Code)
}

func TestDeleteUser_ExpiredTrialSurvivesRecreate(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	late := s.seedUser(t, "late@pos.test", models.RoleWaiter, 30*24*time.Hour)
	admin := s.login(t, "admin@pos.test")

	loginBody := `{"email":"late@pos.test","password":"secret123"}`
	require.Equal(t, http.StatusPaymentRequired, s.do(t, http.MethodPost, "/api/auth/login", loginBody, nil).Code)

	path := "/api/users/" + strconv.Itoa(int(late.ID))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, path, "", admin).Code)
	rec := s.do(t, http.MethodPost, "/api/users", `{"email":"late@pos.test","name":"Again","password":"secret123","role":"waiter"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusPaymentRequired, s.do(t, http.MethodPost, "/api/auth/login", loginBody, nil).Code)
}

func TestFoods(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	admin := s.login(t, "admin@pos.test")
	waiter := s.login(t, "waiter@pos.test")

	rec := s.do(t, http.MethodPost, "/api/foods", `{"name":"Picanha","category":"Carnes","price":89.9}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	food := decode[map[string]any](t, rec)
	assert.Equal(t, "89.90", food["price"])
	path := "/api/foods/" + strconv.Itoa(int(food["id"].(float64)))

	foods := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/foods", "", waiter))
	require.Len(t, foods, 1)

	found := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/foods/search?q=pican", "", waiter))
	require.Len(t, found, 1)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/foods/search", "", waiter).Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path, "", waiter).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path, "", admin).Code)
	assert.Empty(t, decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/foods", "", waiter)))
}

func TestOrderScenario(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	s.seedUser(t, "other@pos.test", models.RoleWaiter, 0)
	admin := s.login(t, "admin@pos.test")
	waiter := s.login(t, "waiter@pos.test")
	other := s.login(t, "other@pos.test")

	rec := s.do(t, http.MethodPost, "/api/tables", `{"name":"Mesa 10","capacity":4}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	table := decode[models.Table](t, rec)
	assert.Equal(t, models.TableAvailable, table.Status)

	body := `{"tableId":` + strconv.Itoa(int(table.ID)) + `,"items":[{"id":1,"name":"Picanha","quantity":2,"price":"89.90"}],"total":"179.80","notes":"sem cebola"}`
	rec = s.do(t, http.MethodPost, "/api/orders", body, waiter)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "179.80", order.Total.String())
	orderPath := "/api/orders/" + strconv.Itoa(int(order.ID))

	got, err := s.repo.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, got.Status)

	assert.Len(t, decode[[]models.Order](t, s.do(t, http.MethodGet, "/api/orders", "", waiter)), 1)
	assert.Empty(t, decode[[]models.Order](t, s.do(t, http.MethodGet, "/api/orders", "", other)))
	assert.Len(t, decode[[]models.Order](t, s.do(t, http.MethodGet, "/api/orders", "", admin)), 1)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, orderPath, "", other).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, orderPath, "", waiter).Code)

	for _, status := range []string{"preparing", "ready"} {
		rec = s.do(t, http.MethodPut, orderPath, `{"status":"`+status+`"}`, waiter)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got, err = s.repo.GetTable(context.Background(), table.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TableOccupied, got.Status)
	}

	rec = s.do(t, http.MethodPut, orderPath, `{"status":"delivered"}`, other)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, err = s.repo.GetTable(context.Background(), table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, orderPath, "", waiter).Code)
	rec = s.do(t, http.MethodDelete, orderPath, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, orderPath, "", admin).Code)
}

func TestCreateOrder_Validation(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "waiter@pos.test", models.RoleWaiter, 0)
	waiter := s.login(t, "waiter@pos.test")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/orders", `{}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/orders", `{"tableId":1}`, waiter).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/orders/1", `{"status":"lost"}`, waiter).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ghost@pos.test","password":"secret123"}`, nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `restaurant_pos_logins_total{outcome="invalid_credentials"} 1`)
}
