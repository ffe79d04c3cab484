package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

type AddressService struct {
	Repo *repo.GormRepo
}

// Save upserts the user's single delivery address.
func (s *AddressService) Save(ctx context.Context, req transport.AddressRequest) (*models.DeliveryAddress, error) {
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.PostalCode) == "" {
		return nil, fmt.Errorf("%w: address, city and postal_code required", ErrValidation)
	}
	user, err := userByName(ctx, s.Repo, req.Username)
	if err != nil {
		return nil, err
	}

	a := &models.DeliveryAddress{
		UserID:     user.ID,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.SaveAddress(ctx, a); err != nil {
		return nil, err
	}
	return s.Repo.AddressByUser(ctx, user.ID)
}
