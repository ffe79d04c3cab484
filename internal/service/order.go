package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
)

type Summary struct {
	UserID     uint
	TotalPrice decimal.Decimal
	OrderCount int
	Status     string
}

type OrderService struct {
	Repo *repo.GormRepo
}

// PendingSummary returns nil, nil when the user has no pending orders.
func (s *OrderService) PendingSummary(ctx context.Context, username string) (*Summary, error) {
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	lines, err := s.Repo.PendingLines(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return Summarize(user.ID, lines), nil
}

func (s *OrderService) History(ctx context.Context, username string) ([]repo.OrderLine, error) {
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	return s.Repo.OrdersByUser(ctx, user.ID)
}

// Summarize folds order lines into a total. Status is the lines' common
// status, or OrderStatusMixed when they disagree.
func Summarize(userID uint, lines []repo.PendingLine) *Summary {
	if len(lines) == 0 {
		return nil
	}
	sum := &Summary{UserID: userID, TotalPrice: decimal.Zero, Status: lines[0].Status}
	for _, l := range lines {
		sum.TotalPrice = sum.TotalPrice.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		sum.OrderCount++
		if l.Status != sum.Status {
			sum.Status = models.OrderStatusMixed
		}
	}
	return sum
}
