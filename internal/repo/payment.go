package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Omit("Orders").Create(p).Error
}

func (r *GormRepo) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.DB.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "payment_id").Order("id ASC")
		}).
		Order("created_at DESC, id DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormRepo) PaymentsByUser(ctx context.Context, userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
