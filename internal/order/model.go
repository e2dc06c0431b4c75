package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const StatusPending Status = "pending"

// MaxTotal is the largest total orders.total_price can hold.
var MaxTotal = decimal.RequireFromString("999999999999.99")

type Order struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Description string          `json:"description"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Items       []Item          `json:"items"`
}

// Item is one order line. Price is the unit price at placement time.
type Item struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LineItem is a requested product and quantity.
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// lockedProduct is the part of a product row read under FOR UPDATE.
type lockedProduct struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Stock int
}
