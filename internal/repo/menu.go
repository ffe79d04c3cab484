package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

func (r *GormRepo) ListAvailableMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.DB.WithContext(ctx).
		Where("available = ?", true).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) MenuItemByName(ctx context.Context, name string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) MenuItemByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) MenuItemsByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) SearchMenu(ctx context.Context, q string, limit int) ([]models.MenuItem, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"

	var items []models.MenuItem
	if err := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *GormRepo) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := r.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *GormRepo) PatchMenuItem(ctx context.Context, req transport.PatchMenuItemRequest, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.forUpdate(tx.DB.Where("id = ?", id), "").First(&item).Error; err != nil {
			return err
		}

		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Price != nil {
			item.Price = *req.Price
		}
		if req.Available != nil {
			item.Available = *req.Available
		}
		if req.ImageURL != nil {
			item.ImageURL = *req.ImageURL
		}

		return tx.DB.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// WithdrawMenuItem takes an item off the menu. The row is kept because orders
// and cart lines still price against it.
func (r *GormRepo) WithdrawMenuItem(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Where("id = ?", id).
		Update("available", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
