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
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

const CartTimeLayout = "02.01.2006 15:04:05"

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) AddToCart(ctx context.Context, username, itemName string, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	item, err := menuItemByName(ctx, s.Repo, itemName)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: menu item %q is not available", ErrValidation, item.Name)
	}

	line := &models.CartItem{UserID: user.ID, MenuItemID: item.ID, Quantity: qty}
	if err := s.Repo.AddToCart(ctx, line); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":         "cart_item_added",
		"user_id":      user.ID,
		"menu_item_id": item.ID,
		"quantity":     qty,
	})
	return line, nil
}

func (s *CartService) GetCart(ctx context.Context, username string) ([]transport.CartLine, error) {
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	lines, err := s.Repo.CartLines(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, transport.CartLine{
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			Price:     l.Price,
			CreatedAt: l.CreatedAt.Format(CartTimeLayout),
		})
	}
	return out, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, username, itemName string) error {
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return err
	}
	item, err := menuItemByName(ctx, s.Repo, itemName)
	if err != nil {
		return err
	}
	if err := s.Repo.RemoveFromCart(ctx, user.ID, item.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %q is not in the cart", ErrNotFound, item.Name)
		}
		return err
	}

	publish(ctx, s.Events, events.TopicCart, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":         "cart_item_removed",
		"user_id":      user.ID,
		"menu_item_id": item.ID,
	})
	return nil
}
