package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/events"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
)

func tableStatus(t *testing.T, env *testEnv, id uint) models.TableStatus {
	t.Helper()
	table, err := env.Repo.GetTable(context.Background(), id)
	require.NoError(t, err)
	return table.Status
}

func TestOrderService_DeliveryCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	waiter := env.seedUser(t, "garcom@pos.test", models.RoleWaiter, 0)

	table, err := env.Tables.CreateTable(ctx, transport.CreateTableRequest{Name: "Mesa 10", Capacity: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, table.Status)

	order, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), waiter.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, waiter.ID, order.WaiterID)
	assert.Equal(t, "20.00", order.Total.String())
	assert.Equal(t, models.TableOccupied, tableStatus(t, env, table.ID))

	for _, st := range []string{"preparing", "ready"} {
		_, err := env.Orders.PatchOrder(ctx, order.ID, transport.PatchOrderRequest{Status: ptr(st)})
		require.NoError(t, err)
		assert.Equal(t, models.TableOccupied, tableStatus(t, env, table.ID), "status %s keeps the table", st)
	}

	updated, err := env.Orders.PatchOrder(ctx, order.ID, transport.PatchOrderRequest{Status: ptr("delivered")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)
	assert.Equal(t, models.TableAvailable, tableStatus(t, env, table.ID))

	assert.Equal(t, []string{
		events.OrderCreated, events.TableOccupied,
		events.OrderUpdated, events.OrderUpdated,
		events.OrderUpdated, events.TableReleased,
	}, env.Events.Types())
	assert.Equal(t, []int{2, 1, 1, 2}, env.Events.BatchSizes(), "order and table events go out in one write")
}

func TestOrderService_CreateOccupiesRegardlessOfPriorStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	waiter := env.seedUser(t, "garcom@pos.test", models.RoleWaiter, 0)

	for _, prior := range []string{"available", "occupied", "reserved"} {
		table, err := env.Tables.CreateTable(ctx, transport.CreateTableRequest{Name: "Mesa " + prior, Status: prior})
		require.NoError(t, err)

		_, err = env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), waiter.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TableOccupied, tableStatus(t, env, table.ID), "prior status %s", prior)
	}
}

func TestOrderService_CancelledKeepsTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	waiter := env.seedUser(t, "garcom@pos.test", models.RoleWaiter, 0)
	table := env.seedTable(t, "Mesa 02")

	order, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), waiter.ID)
	require.NoError(t, err)

	_, err = env.Orders.PatchOrder(ctx, order.ID, transport.PatchOrderRequest{Status: ptr("cancelled")})
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, tableStatus(t, env, table.ID))

	require.NoError(t, env.Orders.DeleteOrder(ctx, order.ID))
	assert.Equal(t, models.TableAvailable, tableStatus(t, env, table.ID))
	last := env.Events.Batches[len(env.Events.Batches)-1]
	require.Len(t, last, 2)
	assert.Equal(t, events.OrderDeleted, last[0].Type)
	assert.Equal(t, events.TableReleased, last[1].Type)

	_, err = env.Orders.GetOrder(ctx, waiter.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.Orders.DeleteOrder(ctx, order.ID), ErrNotFound)
}

func TestOrderService_DeleteReleasesDeliveredTable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	waiter := env.seedUser(t, "garcom@pos.test", models.RoleWaiter, 0)
	table := env.seedTable(t, "Mesa 03")

	order, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), waiter.ID)
	require.NoError(t, err)
	_, err = env.Orders.PatchOrder(ctx, order.ID, transport.PatchOrderRequest{Status: ptr("delivered")})
	require.NoError(t, err)

	_, err = env.Tables.PatchTable(ctx, table.ID, transport.PatchTableRequest{Status: ptr("reserved")})
	require.NoError(t, err)

	require.NoError(t, env.Orders.DeleteOrder(ctx, order.ID))
	assert.Equal(t, models.TableAvailable, tableStatus(t, env, table.ID))
}

func TestOrderService_ListAndGetAreScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, "admin@pos.test", models.RoleAdmin, 0)
	ana := env.seedUser(t, "ana@pos.test", models.RoleWaiter, 0)
	bia := env.seedUser(t, "bia@pos.test", models.RoleCashier, 0)
	table := env.seedTable(t, "Mesa 04")

	first, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), ana.ID)
	require.NoError(t, err)
	env.Now = env.Now.Add(time.Minute)
	second, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "30.00"), bia.ID)
	require.NoError(t, err)

	all, err := env.Orders.ListOrders(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	mine, err := env.Orders.ListOrders(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = env.Orders.GetOrder(ctx, ana.ID, second.ID)
	assert.ErrorIs(t, err, ErrNotFound, "another waiter's order is hidden")
	got, err := env.Orders.GetOrder(ctx, admin.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, bia.ID, got.WaiterID)

	_, err = env.Orders.ListOrders(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOrderService_AnyUserMayUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.seedUser(t, "ana@pos.test", models.RoleWaiter, 0)
	table := env.seedTable(t, "Mesa 05")

	order, err := env.Orders.CreateOrder(ctx, orderRequest(table.ID, "20.00"), ana.ID)
	require.NoError(t, err)

	updated, err := env.Orders.PatchOrder(ctx, order.ID, transport.PatchOrderRequest{
		Notes: ptr("sem cebola"),
		Items: []transport.OrderItemRequest{{ID: 2, Name: "Y", Quantity: 1, Price: money("7.50")}},
		Total: money("7.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "sem cebola", updated.Notes)
	assert.Equal(t, "7.50", updated.Total.String())
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Y", updated.Items[0].Name)
	assert.Equal(t, models.OrderPending, updated.Status)
	assert.Equal(t, models.TableOccupied, tableStatus(t, env, table.ID))
}

func TestOrderService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	waiter := env.seedUser(t, "garcom@pos.test", models.RoleWaiter, 0)
	table := env.seedTable(t, "Mesa 06")

	valid := func() transport.CreateOrderRequest { return orderRequest(table.ID, "20.00") }
	tests := []struct {
		name   string
		mutate func(*transport.CreateOrderRequest)
	}{
		{name: "missing table", mutate: func(r *transport.CreateOrderRequest) { r.TableID = 0 }},
		{name: "unknown table", mutate: func(r *transport.CreateOrderRequest) { r.TableID = 9999 }},
		{name: "no items", mutate: func(r *transport.CreateOrderRequest) { r.Items = nil }},
		{name: "zero quantity", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{name: "item without price", mutate: func(r *transport.CreateOrderRequest) { r.Items[0].Price = nil }},
		{name: "missing total", mutate: func(r *transport.CreateOrderRequest) { r.Total = nil }},
		{name: "negative total", mutate: func(r *transport.CreateOrderRequest) { r.Total = money("-1") }},
		{name: "unknown status", mutate: func(r *transport.CreateOrderRequest) { r.Status = "lost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := env.Orders.CreateOrder(ctx, req, waiter.ID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, models.TableAvailable, tableStatus(t, env, table.ID), "failed creates leave the table alone")
}
