package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/product"
)

// CartItem is one row of a user's cart, unique per (user, product).
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Line struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Product   product.View    `json:"product"`
}

type Cart struct {
	Items     []Line          `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// MergeItem is a line carried over from a guest session.
type MergeItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}
