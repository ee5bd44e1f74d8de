package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/hash"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

func patchRole(r models.Role) transport.PatchUserRequest {
	s := string(r)
	return transport.PatchUserRequest{Role: &s}
}

func TestUserService_CreateUser_OpensTrial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.Users.CreateUser(ctx, transport.CreateUserRequest{
		Email:    "novo@pos.test",
		Name:     "Novo",
		Password: "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleWaiter, user.Role)
	assert.True(t, user.Active)
	assert.True(t, hash.CheckPassword(user.PasswordHash, "pw123456"))

	trial, err := env.Repo.GetTrialStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, trial.Active)
	assert.True(t, trial.StartDate.Equal(env.Now))

	res, err := env.Auth.Login(ctx, "novo@pos.test", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, 7, res.TrialDaysLeft)
}

func TestUserService_CreateUser_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "taken@pos.test", models.RoleWaiter, 0)

	tests := []struct {
		name string
		req  transport.CreateUserRequest
	}{
		{name: "bad email", req: transport.CreateUserRequest{Email: "nope", Name: "A", Password: "x"}},
		{name: "missing name", req: transport.CreateUserRequest{Email: "a@pos.test", Password: "x"}},
		{name: "missing password", req: transport.CreateUserRequest{Email: "a@pos.test", Name: "A"}},
		{name: "unknown role", req: transport.CreateUserRequest{Email: "a@pos.test", Name: "A", Password: "x", Role: "chef"}},
		{name: "duplicate email", req: transport.CreateUserRequest{Email: "taken@pos.test", Name: "A", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Users.CreateUser(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_PatchUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "old@pos.test", models.RoleWaiter, 0)

	updated, err := env.Users.PatchUser(ctx, user.ID, transport.PatchUserRequest{
		Name:     ptr("Renamed"),
		Password: ptr("newpass"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "old@pos.test", updated.Email)
	assert.True(t, hash.CheckPassword(updated.PasswordHash, "newpass"))

	_, err = env.Users.PatchUser(ctx, user.ID, transport.PatchUserRequest{Role: ptr("chef")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Users.PatchUser(ctx, 9999, transport.PatchUserRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	free := env.seedUser(t, "free@pos.test", models.RoleCashier, -1)
	trialed := env.seedUser(t, "trialed@pos.test", models.RoleWaiter, 0)
	busy := env.seedUser(t, "busy@pos.test", models.RoleWaiter, 0)
	table := env.seedTable(t, "Mesa 01")

	_, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), busy.ID)
	require.NoError(t, err)

	require.NoError(t, env.Users.DeleteUser(ctx, free.ID))
	assert.ErrorIs(t, env.Users.DeleteUser(ctx, free.ID), ErrNotFound)
	assert.ErrorIs(t, env.Users.DeleteUser(ctx, busy.ID), ErrValidation)
	assert.ErrorIs(t, env.Users.DeleteUser(ctx, trialed.ID), ErrValidation)
}

func TestUserService_DeleteDoesNotResetExpiredTrial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	expired := env.seedUser(t, "late@pos.test", models.RoleWaiter, 30*24*time.Hour)

	_, err := env.Auth.Login(ctx, "late@pos.test", "secret123")
	require.ErrorIs(t, err, ErrTrialExpired)

	assert.ErrorIs(t, env.Users.DeleteUser(ctx, expired.ID), ErrValidation)

	_, err = env.Users.CreateUser(ctx, transport.CreateUserRequest{
		Email: "late@pos.test", Password: "secret123", Name: "Again", Role: string(models.RoleWaiter),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Auth.Login(ctx, "late@pos.test", "secret123")
	assert.ErrorIs(t, err, ErrTrialExpired)
}
