package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
)

type ReviewService struct {
	Repo *repo.GormRepo
}

func (s *ReviewService) AddReview(ctx context.Context, username, itemName string, rating int, text string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	item, err := menuItemByName(ctx, s.Repo, itemName)
	if err != nil {
		return nil, err
	}

	rv := &models.Review{UserID: user.ID, MenuItemID: item.ID, Rating: rating, Review: text}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}
