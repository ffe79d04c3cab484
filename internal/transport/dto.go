package transport

import (
	"github.com/shopspring/decimal"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateMenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   *bool           `json:"available"`
	ImageURL    string          `json:"image_url"`
}

type PatchMenuItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
	ImageURL    *string          `json:"image_url"`
}

type CartAddRequest struct {
	Username string `json:"username"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

type CartLine struct {
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt string          `json:"created_at"`
}

type PendingSummary struct {
	UserID     uint            `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OrderCount int             `json:"order_count"`
	Status     string          `json:"status"`
}

type PayOrderRequest struct {
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

type InsufficientAmountResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Amount   decimal.Decimal `json:"amount"`
	Required decimal.Decimal `json:"required"`
}

type ReviewRequest struct {
	Username string `json:"username"`
	ItemName string `json:"item_name"`
	Rating   int    `json:"rating"`
	Review   string `json:"review"`
}

type AddressRequest struct {
	Username   string `json:"username"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type PaymentView struct {
	ID            uint            `json:"id"`
	UserID        uint            `json:"user_id"`
	OrderIDs      []uint          `json:"order_ids"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}
