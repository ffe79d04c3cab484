package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	// OrderStatusMixed is reported by the aggregator when pending rows disagree on status.
	OrderStatusMixed = "mixed"

	PaymentStatusCompleted = "completed"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:user"     json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"            json:"id"`
	UserID    uint   `gorm:"index;not null"        json:"user_id"`
	JTI       string `gorm:"uniqueIndex;not null"  json:"jti"`
	TokenHash string `gorm:"not null"              json:"-"`
	ExpiresAt int64  `gorm:"not null"              json:"expires_at"`
	Revoked   bool   `gorm:"default:false"         json:"revoked"`
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name        string          `gorm:"uniqueIndex;not null"            json:"name"`
	Description string          `gorm:"not null;default:''"             json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"     json:"price"`
	Available   bool            `gorm:"not null"                        json:"available"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CartItem struct {
	ID         uint      `gorm:"primaryKey"                                json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_cart_user_item;not null"  json:"user_id"`
	MenuItemID uint      `gorm:"uniqueIndex:idx_cart_user_item;not null"  json:"menu_item_id"`
	Quantity   int       `gorm:"not null;default:1"                        json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	ID         uint      `gorm:"primaryKey"                   json:"id"`
	UserID     uint      `gorm:"index;not null"               json:"user_id"`
	MenuItemID uint      `gorm:"not null"                     json:"menu_item_id"`
	Quantity   int       `gorm:"not null"                     json:"quantity"`
	Status     string    `gorm:"index;not null;default:pending" json:"status"`
	PaymentID  *uint     `gorm:"index"                        json:"payment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Payment struct {
	ID            uint            `gorm:"primaryKey"                  json:"id"`
	UserID        uint            `gorm:"index;not null"              json:"user_id"`
	PaymentMethod string          `gorm:"not null"                    json:"payment_method"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status        string          `gorm:"not null"                    json:"status"`
	OrderCount    int             `gorm:"not null"                    json:"order_count"`
	Orders        []Order         `gorm:"foreignKey:PaymentID"        json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Review struct {
	ID         uint      `gorm:"primaryKey"       json:"id"`
	UserID     uint      `gorm:"index;not null"   json:"user_id"`
	MenuItemID uint      `gorm:"index;not null"   json:"menu_id"`
	Rating     int       `gorm:"not null"         json:"rating"`
	Review     string    `gorm:"type:text"        json:"review"`
	CreatedAt  time.Time `json:"created_at"`
}

type DeliveryAddress struct {
	ID         uint      `gorm:"primaryKey"            json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null"  json:"user_id"`
	Address    string    `gorm:"not null"              json:"address"`
	City       string    `gorm:"not null"              json:"city"`
	PostalCode string    `gorm:"not null"              json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func All() []any {
	return []any{
		&User{}, &RefreshToken{}, &MenuItem{}, &CartItem{},
		&Payment{}, &Order{}, &Review{}, &DeliveryAddress{},
	}
}
