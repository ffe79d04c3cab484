package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	MsgCartEmpty       = "cart is empty"
	MsgCheckoutSuccess = "checkout successful"
)

type CheckoutResult struct {
	Status  string
	Message string
	Orders  []models.Order
}

type CheckoutService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Checkout turns the user's cart into pending orders, one per cart line, and
// empties the cart in the same transaction. An empty cart is reported in the
// result, not as an error.
func (s *CheckoutService) Checkout(ctx context.Context, username string) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.checkout", "username", username)

	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	}

	var (
		user   *models.User
		orders []models.Order
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		user, err = tx.LockUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %q", ErrNotFound, username)
			}
			return err
		}

		items, err := tx.CartItems(ctx, user.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		orders = make([]models.Order, 0, len(items))
		for _, it := range items {
			if it.MenuItemID == 0 || it.Quantity <= 0 {
				return fmt.Errorf("%w: cart row %d has menu_item_id=%d quantity=%d",
					ErrInconsistent, it.ID, it.MenuItemID, it.Quantity)
			}
			orders = append(orders, models.Order{
				UserID:     user.ID,
				MenuItemID: it.MenuItemID,
				Quantity:   it.Quantity,
				Status:     models.OrderStatusPending,
			})
		}

		ids := make([]uint, len(items))
		for i, it := range items {
			ids[i] = it.MenuItemID
		}
		menu, err := tx.MenuItemsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := make(map[uint]struct{}, len(menu))
		for _, m := range menu {
			known[m.ID] = struct{}{}
		}
		for _, it := range items {
			if _, ok := known[it.MenuItemID]; !ok {
				return fmt.Errorf("%w: cart row %d references missing menu item %d",
					ErrInconsistent, it.ID, it.MenuItemID)
			}
		}

		if err := tx.CreateOrders(ctx, orders); err != nil {
			return err
		}
		deleted, err := tx.ClearCart(ctx, user.ID)
		if err != nil {
			return err
		}
		if deleted != int64(len(items)) {
			return fmt.Errorf("%w: cart changed during checkout", ErrConflict)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInconsistent) {
			l.Error("checkout_error", "reason", "corrupt cart row", "error", err)
		}
		return nil, err
	}

	if len(orders) == 0 {
		return &CheckoutResult{Status: StatusError, Message: MsgCartEmpty}, nil
	}

	ids := make([]uint, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	publish(ctx, s.Events, events.TopicOrder, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":      "checkout_completed",
		"user_id":   user.ID,
		"order_ids": ids,
	})

	return &CheckoutResult{Status: StatusSuccess, Message: MsgCheckoutSuccess, Orders: orders}, nil
}
