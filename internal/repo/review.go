package repo

import (
	"context"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return r.DB.WithContext(ctx).Create(rv).Error
}

func (r *GormRepo) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
