package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/notify"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

const MsgPaymentSuccess = "payment successful"

type PayResult struct {
	Status   string
	Message  string
	Payment  *models.Payment
	OrderIDs []uint
	Total    decimal.Decimal
}

type PaymentService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Notifier notify.Notifier
}

// PayOrder settles every pending order of the user in one transaction. The
// total is recomputed from the locked rows; amount must cover it.
func (s *PaymentService) PayOrder(ctx context.Context, userID uint, method string, amount decimal.Decimal) (*PayResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.pay", "user_id", userID)

	method = strings.TrimSpace(method)
	if userID == 0 {
		return nil, fmt.Errorf("%w: user_id required", ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment_method required", ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}

	var (
		user    *models.User
		payment *models.Payment
		ids     []uint
		total   decimal.Decimal
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		user, err = tx.LockUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		lines, err := tx.LockPendingLines(ctx, userID)
		if err != nil {
			return err
		}
		sum := Summarize(userID, lines)
		if sum == nil || sum.TotalPrice.IsZero() {
			return fmt.Errorf("%w: nothing to pay", ErrNotFound)
		}
		total = sum.TotalPrice
		if amount.LessThan(total) {
			return &InsufficientAmountError{Amount: amount, Required: total}
		}

		payment = &models.Payment{
			UserID:        userID,
			PaymentMethod: method,
			Amount:        amount,
			Status:        models.PaymentStatusCompleted,
			OrderCount:    len(lines),
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}

		ids = make([]uint, len(lines))
		for i, ln := range lines {
			ids[i] = ln.OrderID
		}
		n, err := tx.MarkOrdersPaid(ctx, userID, ids, payment.ID)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: %d of %d orders were already settled", ErrConflict, int64(len(ids))-n, len(ids))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			l.Warn("pay_conflict", "error", err)
		}
		return nil, err
	}

	key := strconv.FormatUint(uint64(userID), 10)
	publish(ctx, s.Events, events.TopicOrder, key, map[string]any{
		"type":           "order_paid",
		"user_id":        userID,
		"payment_id":     payment.ID,
		"order_ids":      ids,
		"amount":         amount.String(),
		"payment_method": method,
	})
	s.notify(ctx, notify.PaidNotice{
		PaymentID:     payment.ID,
		UserID:        userID,
		Username:      user.Username,
		PaymentMethod: method,
		Amount:        amount,
		OrderCount:    len(ids),
	})

	return &PayResult{
		Status:   StatusSuccess,
		Message:  MsgPaymentSuccess,
		Payment:  payment,
		OrderIDs: ids,
		Total:    total,
	}, nil
}

func (s *PaymentService) notify(ctx context.Context, n notify.PaidNotice) {
	if s.Notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.Notifier.OrderPaid(nctx, n); err != nil {
		logging.FromContext(ctx).Error("notify_error", "payment_id", n.PaymentID, "error", err)
	}
}

func (s *PaymentService) History(ctx context.Context, username string) ([]models.Payment, error) {
	user, err := userByName(ctx, s.Repo, username)
	if err != nil {
		return nil, err
	}
	return s.Repo.PaymentsByUser(ctx, user.ID)
}
