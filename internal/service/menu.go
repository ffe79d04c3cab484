package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/search"
	"github.com/Skotchmaster/food_delivery/internal/transport"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const PlaceholderImage = "/static/images/placeholder.png"

type MenuService struct {
	Repo  *repo.GormRepo
	Index search.Index
}

func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.Repo.ListAvailableMenu(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		withPlaceholder(&items[i])
	}
	return items, nil
}

func (s *MenuService) Search(ctx context.Context, q string, limit int) ([]models.MenuItem, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	items, err := s.Index.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		withPlaceholder(&items[i])
	}
	return items, nil
}

func (s *MenuService) Create(ctx context.Context, req transport.CreateMenuItemRequest) (*models.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	item := &models.MenuItem{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available == nil || *req.Available,
		ImageURL:    req.ImageURL,
	}
	created, err := s.Repo.CreateMenuItem(ctx, item)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: menu item %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.reindex(ctx, created)
	return created, nil
}

func (s *MenuService) Patch(ctx context.Context, id uint, req transport.PatchMenuItemRequest) (*models.MenuItem, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}

	item, err := s.Repo.PatchMenuItem(ctx, req, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, id)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("%w: menu item name taken", ErrConflict)
		}
		return nil, err
	}
	s.reindex(ctx, item)
	return item, nil
}

// Delete withdraws the item from the menu and the search index.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.WithdrawMenuItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: menu item %d", ErrNotFound, id)
		}
		return err
	}
	if err := s.Index.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "svc", "menu.delete", "id", id, "error", err)
	}
	return nil
}

// Reindex pushes every menu row into the search index.
func (s *MenuService) Reindex(ctx context.Context) error {
	var items []models.MenuItem
	if err := s.Repo.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return err
	}
	for i := range items {
		if err := s.Index.Put(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MenuService) reindex(ctx context.Context, item *models.MenuItem) {
	if err := s.Index.Put(ctx, item); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "svc", "menu.index", "id", item.ID, "error", err)
	}
}

func withPlaceholder(item *models.MenuItem) {
	if item.ImageURL == "" {
		item.ImageURL = PlaceholderImage
	}
}
