package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/food_delivery/internal/events"
	"github.com/Skotchmaster/food_delivery/internal/models"
	"github.com/Skotchmaster/food_delivery/internal/repo"
	"github.com/Skotchmaster/food_delivery/pkg/logging"
)

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrConflict           = errors.New("conflict")            // 409
	ErrInsufficientAmount = errors.New("insufficient amount") // 400
	ErrInconsistent       = errors.New("inconsistent data")   // 500
	ErrUnauthorized       = errors.New("unauthorized")        // 401
	ErrForbidden          = errors.New("forbidden")           // 403
)

type InsufficientAmountError struct {
	Amount   decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientAmountError) Error() string {
	return fmt.Sprintf("insufficient amount: got %s, required %s", e.Amount.String(), e.Required.String())
}

func (e *InsufficientAmountError) Is(target error) bool {
	return target == ErrInsufficientAmount
}

func userByName(ctx context.Context, r *repo.GormRepo, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	}
	u, err := r.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, err
	}
	return u, nil
}

func menuItemByName(ctx context.Context, r *repo.GormRepo, name string) (*models.MenuItem, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: item_name required", ErrValidation)
	}
	item, err := r.MenuItemByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: menu item %q", ErrNotFound, name)
		}
		return nil, err
	}
	return item, nil
}

const publishTimeout = 5 * time.Second

// publish sends an event after the database work is committed. Failures are
// logged and never undo the committed state.
func publish(ctx context.Context, p events.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event["ts"] = time.Now().UTC().Format(time.RFC3339)
	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		l.Error("publish_event_error", "topic", topic, "type", event["type"], "error", err)
	}
}
