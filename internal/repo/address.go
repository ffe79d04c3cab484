package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

// SaveAddress inserts the user's address or overwrites the existing one,
// refreshing created_at.
func (r *GormRepo) SaveAddress(ctx context.Context, a *models.DeliveryAddress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "city", "postal_code", "created_at"}),
	}).Create(a).Error
}

func (r *GormRepo) AddressByUser(ctx context.Context, userID uint) (*models.DeliveryAddress, error) {
	var a models.DeliveryAddress
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) ListAddresses(ctx context.Context) ([]models.DeliveryAddress, error) {
	var addrs []models.DeliveryAddress
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&addrs).Error; err != nil {
		return nil, err
	}
	return addrs, nil
}
