package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/food_delivery/internal/models"
)

// PendingLine is one pending order joined with the current menu price.
type PendingLine struct {
	OrderID  uint
	Status   string
	Quantity int
	Price    decimal.Decimal
}

type OrderLine struct {
	ID        uint            `json:"id"`
	Status    string          `json:"status"`
	ItemName  string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r *GormRepo) CreateOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&orders).Error
}

func (r *GormRepo) pendingLines(ctx context.Context, userID uint, lock bool) ([]PendingLine, error) {
	q := r.DB.WithContext(ctx).
		Table("orders o").
		Select("o.id AS order_id, o.status, o.quantity, m.price").
		Joins("JOIN menu_items m ON m.id = o.menu_item_id").
		Where("o.user_id = ? AND o.status = ?", userID, models.OrderStatusPending).
		Order("o.id ASC")
	if lock {
		q = r.forUpdate(q, "o")
	}

	var lines []PendingLine
	if err := q.Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) PendingLines(ctx context.Context, userID uint) ([]PendingLine, error) {
	return r.pendingLines(ctx, userID, false)
}

// LockPendingLines is PendingLines with the order rows locked for update.
func (r *GormRepo) LockPendingLines(ctx context.Context, userID uint) ([]PendingLine, error) {
	return r.pendingLines(ctx, userID, true)
}

// MarkOrdersPaid flips the given orders from pending to paid and links them
// to paymentID. Only rows still pending are touched; callers compare the
// returned count with len(orderIDs).
func (r *GormRepo) MarkOrdersPaid(ctx context.Context, userID uint, orderIDs []uint, paymentID uint) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND status = ? AND id IN ?", userID, models.OrderStatusPending, orderIDs).
		Updates(map[string]any{
			"status":     models.OrderStatusPaid,
			"payment_id": paymentID,
		})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) OrdersByUser(ctx context.Context, userID uint) ([]OrderLine, error) {
	var lines []OrderLine
	if err := r.DB.WithContext(ctx).
		Table("orders o").
		Select("o.id, o.status, m.name AS item_name, m.price, o.quantity, o.created_at").
		Joins("JOIN menu_items m ON m.id = o.menu_item_id").
		Where("o.user_id = ?", userID).
		Order("o.created_at DESC, o.id DESC").
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
