package favorite

import (
	"time"

	"github.com/wichananm65/storefront-backend/internal/product"
)

type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_fav_user_product"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_fav_user_product"`
	CreatedAt time.Time
}

func (Favorite) TableName() string {
	return "favorites"
}

type Item struct {
	ProductID uint         `json:"productId"`
	AddedAt   time.Time    `json:"addedAt"`
	Product   product.View `json:"product"`
}
