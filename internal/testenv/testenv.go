// Package testenv builds throwaway databases for tests.
package testenv

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/pkg/db"
	"github.com/Skotchmaster/food_delivery/pkg/hash"
)

// NewRepo opens a fresh in-memory SQLite database with the full schema.
func NewRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	require.NoError(t, r.AutoMigrate(context.Background()))
	return r
}

// NewPostgresRepo connects to TEST_DATABASE_URL and truncates every table,
// skipping the test when the variable is unset.
func NewPostgresRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	gdb, err := db.Open(context.Background(), db.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	require.NoError(t, r.AutoMigrate(context.Background()))
	require.NoError(t, gdb.Exec(`TRUNCATE TABLE orders, payments, cart_items, reviews,
		delivery_addresses, refresh_tokens, menu_items, users RESTART IDENTITY CASCADE`).Error)
	return r
}

func SeedUser(t *testing.T, r *repo.GormRepo, username, password, role string) *models.User {
	t.Helper()
	pw, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, PasswordHash: pw, Role: role}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func SeedMenuItem(t *testing.T, r *repo.GormRepo, name string, price int64) *models.MenuItem {
	t.Helper()
	item, err := r.CreateMenuItem(context.Background(), &models.MenuItem{
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Available: true,
	})
	require.NoError(t, err)
	return item
}

func AddToCart(t *testing.T, r *repo.GormRepo, userID, menuItemID uint, qty int) {
	t.Helper()
	require.NoError(t, r.AddToCart(context.Background(), &models.CartItem{
		UserID:     userID,
		MenuItemID: menuItemID,
		Quantity:   qty,
	}))
}
