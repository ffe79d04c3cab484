package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

type PaidNotice struct {
	PaymentID     uint
	UserID        uint
	Username      string
	PaymentMethod string
	Amount        decimal.Decimal
	OrderCount    int
}

type Notifier interface {
	OrderPaid(ctx context.Context, n PaidNotice) error
}

func FormatPaid(n PaidNotice) string {
	return fmt.Sprintf(
		"Payment #%d received\nCustomer: %s (id %d)\nOrders: %d\nAmount: %s\nMethod: %s",
		n.PaymentID, n.Username, n.UserID, n.OrderCount, n.Amount.StringFixed(2), n.PaymentMethod,
	)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts payment notices to the admin chat.
type Telegram struct {
	api    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: admin chat id is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) OrderPaid(ctx context.Context, n PaidNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatPaid(n))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

type Nop struct{}

func (Nop) OrderPaid(context.Context, PaidNotice) error { return nil }
