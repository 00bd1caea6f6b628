// Package recent keeps each user's recently viewed products.
package recent

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/product"
)

// Keep is how many views are retained per user.
const Keep = 20

type View struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_recent_user_product"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_recent_user_product"`
	ViewedAt  time.Time `gorm:"not null"`
}

func (View) TableName() string {
	return "recently_viewed"
}

type Item struct {
	ProductID uint         `json:"productId"`
	ViewedAt  time.Time    `json:"viewedAt"`
	Product   product.View `json:"product"`
}
