package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Skotchmaster/food_delivery/internal/backup"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/report"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/internal/transport"
)

type AdminService struct {
	Repo *repo.GormRepo
	// Backup is nil when the store cannot be dumped (sqlite).
	Backup *backup.Dumper
}

func (s *AdminService) Payments(ctx context.Context) ([]transport.PaymentView, error) {
	payments, err := s.Repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.PaymentView, 0, len(payments))
	for _, p := range payments {
		ids := make([]uint, 0, len(p.Orders))
		for _, o := range p.Orders {
			ids = append(ids, o.ID)
		}
		out = append(out, transport.PaymentView{
			ID:            p.ID,
			UserID:        p.UserID,
			OrderIDs:      ids,
			PaymentMethod: p.PaymentMethod,
			Amount:        p.Amount,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *AdminService) ExportPayments(ctx context.Context, w io.Writer) error {
	payments, err := s.Payments(ctx)
	if err != nil {
		return err
	}
	return report.WritePayments(w, payments)
}

func (s *AdminService) Reviews(ctx context.Context) ([]models.Review, error) {
	return s.Repo.ListReviews(ctx)
}

func (s *AdminService) Addresses(ctx context.Context) ([]models.DeliveryAddress, error) {
	return s.Repo.ListAddresses(ctx)
}

func (s *AdminService) Dump(ctx context.Context) (string, error) {
	if s.Backup == nil {
		return "", fmt.Errorf("%w: backup is only supported on postgres", ErrValidation)
	}
	return s.Backup.Dump(ctx)
}

func (s *AdminService) Restore(ctx context.Context, script io.Reader) error {
	if s.Backup == nil {
		return fmt.Errorf("%w: restore is only supported on postgres", ErrValidation)
	}
	return s.Backup.Restore(ctx, script)
}
