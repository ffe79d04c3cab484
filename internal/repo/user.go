package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		var count int64
		if err := tx.DB.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", u.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserAlreadyExist
		}
		if err := tx.DB.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserAlreadyExist
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LockUserByUsername reads the user row with an exclusive lock. Checkout and
// payment for one user serialize on this row.
func (r *GormRepo) LockUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	q := r.DB.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username)
	if err := r.forUpdate(q, "").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) LockUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if err := r.forUpdate(q, "").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
