package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/testenv"
)

func TestCheckout_CreatesPendingOrdersAndClearsCart(t *testing.T) {
	r := testenv.NewRepo(t)
	rec := &recorder{}
	svc := &CheckoutService{Repo: r, Events: rec}
	ctx := context.Background()

	u := testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)
	pizza := testenv.SeedMenuItem(t, r, "Pizza", 500)
	cola := testenv.SeedMenuItem(t, r, "Cola", 100)
	testenv.AddToCart(t, r, u.ID, pizza.ID, 2)
	testenv.AddToCart(t, r, u.ID, cola.ID, 1)

	res, err := svc.Checkout(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Orders, 2)

	var orders []models.Order
	require.NoError(t, r.DB.Order("id").Find(&orders).Error)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Equal(t, u.ID, o.UserID)
		assert.Nil(t, o.PaymentID)
	}
	assert.Equal(t, pizza.ID, orders[0].MenuItemID)
	assert.Equal(t, 2, orders[0].Quantity)

	items, err := r.CartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "order_events", rec.events[0].Topic)
	assert.Equal(t, "checkout_completed", rec.events[0].Event["type"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	r := testenv.NewRepo(t)
	rec := &recorder{}
	svc := &CheckoutService{Repo: r, Events: rec}
	testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)

	res, err := svc.Checkout(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, MsgCartEmpty, res.Message)
	assert.Empty(t, rec.events)

	var n int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckout_UnknownUser(t *testing.T) {
	svc := &CheckoutService{Repo: testenv.NewRepo(t)}
	_, err := svc.Checkout(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckout_CorruptRowRollsBack(t *testing.T) {
	r := testenv.NewRepo(t)
	svc := &CheckoutService{Repo: r}
	ctx := context.Background()

	u := testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)
	pizza := testenv.SeedMenuItem(t, r, "Pizza", 500)
	cola := testenv.SeedMenuItem(t, r, "Cola", 100)
	testenv.AddToCart(t, r, u.ID, pizza.ID, 1)
	testenv.AddToCart(t, r, u.ID, cola.ID, 1)
	require.NoError(t, r.DB.Model(&models.CartItem{}).
		Where("menu_item_id = ?", cola.ID).
		Update("quantity", 0).Error)

	_, err := svc.Checkout(ctx, "alice")
	require.ErrorIs(t, err, ErrInconsistent)

	var n int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	items, err := r.CartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckout_MissingMenuItemRejected(t *testing.T) {
	r := testenv.NewRepo(t)
	svc := &CheckoutService{Repo: r}
	ctx := context.Background()

	u := testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)
	pizza := testenv.SeedMenuItem(t, r, "Pizza", 500)
	testenv.AddToCart(t, r, u.ID, pizza.ID, 1)
	require.NoError(t, r.DB.Create(&models.CartItem{UserID: u.ID, MenuItemID: 999, Quantity: 1}).Error)

	_, err := svc.Checkout(ctx, "alice")
	require.ErrorIs(t, err, ErrInconsistent)

	var n int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
	items, err := r.CartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckout_ConcurrentCallsProduceOneOrderSet(t *testing.T) {
	r := testenv.NewRepo(t)
	svc := &CheckoutService{Repo: r}
	ctx := context.Background()

	u := testenv.SeedUser(t, r, "alice", "pw", models.RoleUser)
	pizza := testenv.SeedMenuItem(t, r, "Pizza", 500)
	testenv.AddToCart(t, r, u.ID, pizza.ID, 2)

	const workers = 4
	results := make([]*CheckoutResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Checkout(ctx, "alice")
		}(i)
	}
	wg.Wait()

	success := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Status == StatusSuccess {
			success++
		} else {
			assert.Equal(t, MsgCartEmpty, results[i].Message)
		}
	}
	assert.Equal(t, 1, success)

	var n int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
