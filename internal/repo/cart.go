package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

type CartLine struct {
	ItemName  string
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
}

// AddToCart keeps one line per (user, item): an existing line grows by
// item.Quantity, otherwise a new line is inserted. item is reloaded.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		res := tx.DB.Model(&models.CartItem{}).
			Where("user_id = ? AND menu_item_id = ?", item.UserID, item.MenuItemID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.DB.Where("user_id = ? AND menu_item_id = ?", item.UserID, item.MenuItemID).First(item).Error
		}
		return tx.DB.Create(item).Error
	})
}

func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]CartLine, error) {
	var lines []CartLine
	if err := r.DB.WithContext(ctx).
		Table("cart_items c").
		Select("m.name AS item_name, c.quantity, m.price, c.created_at").
		Joins("JOIN menu_items m ON m.id = c.menu_item_id").
		Where("c.user_id = ?", userID).
		Order("c.id ASC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, menuItemID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
