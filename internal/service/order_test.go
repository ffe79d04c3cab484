package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/testenv"
)

func TestSummarize(t *testing.T) {
	d := decimal.NewFromInt

	tests := []struct {
		name       string
		lines      []repo.PendingLine
		wantNil    bool
		wantTotal  decimal.Decimal
		wantCount  int
		wantStatus string
	}{
		{name: "no lines", wantNil: true},
		{
			name: "single status",
			lines: []repo.PendingLine{
				{OrderID: 1, Status: models.OrderStatusPending, Quantity: 2, Price: d(500)},
				{OrderID: 2, Status: models.OrderStatusPending, Quantity: 1, Price: d(100)},
			},
			wantTotal: d(1100), wantCount: 2, wantStatus: models.OrderStatusPending,
		},
		{
			name: "disagreeing statuses",
			lines: []repo.PendingLine{
				{OrderID: 1, Status: models.OrderStatusPending, Quantity: 1, Price: d(10)},
				{OrderID: 2, Status: models.OrderStatusPaid, Quantity: 3, Price: d(5)},
			},
			wantTotal: d(25), wantCount: 2, wantStatus: models.OrderStatusMixed,
		},
		{
			name: "fractional prices",
			lines: []repo.PendingLine{
				{OrderID: 1, Status: models.OrderStatusPending, Quantity: 3, Price: decimal.RequireFromString("0.10")},
			},
			wantTotal: decimal.RequireFromString("0.30"), wantCount: 1, wantStatus: models.OrderStatusPending,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(7, tc.lines)
			if tc.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, uint(7), got.UserID)
			assert.True(t, tc.wantTotal.Equal(got.TotalPrice), "total %s", got.TotalPrice)
			assert.Equal(t, tc.wantCount, got.OrderCount)
			assert.Equal(t, tc.wantStatus, got.Status)
		})
	}
}

func TestOrderService_PendingSummary(t *testing.T) {
	r := testenv.NewRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	u := testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)
	pizza := testenv.SeedMenuItem(t, r, "Pizza", 500)
	cola := testenv.SeedMenuItem(t, r, "Cola", 100)

	sum, err := svc.PendingSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, sum)

	require.NoError(t, r.CreateOrders(ctx, []models.Order{
		{UserID: u.ID, MenuItemID: pizza.ID, Quantity: 2, Status: models.OrderStatusPending},
		{UserID: u.ID, MenuItemID: cola.ID, Quantity: 1, Status: models.OrderStatusPending},
		{UserID: u.ID, MenuItemID: cola.ID, Quantity: 9, Status: models.OrderStatusPaid},
	}))

	sum, err = svc.PendingSummary(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.True(t, decimal.NewFromInt(1100).Equal(sum.TotalPrice))
	assert.Equal(t, 2, sum.OrderCount)
	assert.Equal(t, models.OrderStatusPending, sum.Status)

	_, err = svc.PendingSummary(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	history, err := svc.History(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
