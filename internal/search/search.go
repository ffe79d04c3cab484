package search

import (
	"context"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
)

const DefaultLimit = 20

// Index keeps a searchable copy of the menu.
type Index interface {
	Search(ctx context.Context, q string, limit int) ([]models.MenuItem, error)
	Put(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

// SQL searches the menu table directly; Put and Delete are no-ops because
// the table is the index.
type SQL struct {
	Repo *repo.GormRepo
}

func NewSQL(r *repo.GormRepo) *SQL {
	return &SQL{Repo: r}
}

func (s *SQL) Search(ctx context.Context, q string, limit int) ([]models.MenuItem, error) {
	return s.Repo.SearchMenu(ctx, q, clampLimit(limit))
}

func (s *SQL) Put(context.Context, *models.MenuItem) error { return nil }
func (s *SQL) Delete(context.Context, uint) error          { return nil }

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
