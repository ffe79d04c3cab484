package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) AutoMigrate(ctx context.Context) error {
	db := r.DB.WithContext(ctx)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	// usernames are unique regardless of case
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))").Error
}

// InTx runs fn inside one transaction; fn must only use the repo it is handed.
func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// forUpdate adds a row lock; sqlite has none and serializes writers itself.
func (r *GormRepo) forUpdate(q *gorm.DB, of string) *gorm.DB {
	if r.DB.Dialector.Name() == "sqlite" {
		return q
	}
	lock := clause.Locking{Strength: "UPDATE"}
	if of != "" {
		lock.Table = clause.Table{Name: of}
	}
	return q.Clauses(lock)
}
