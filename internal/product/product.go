package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/category"
)

// Product maps to the products table. Price is the list price; sale pricing
// is applied on the way out through View.
type Product struct {
	ID          uint               `gorm:"primaryKey" json:"productId"`
	Name        string             `gorm:"not null" json:"name"`
	Slug        string             `gorm:"uniqueIndex;not null" json:"slug"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int                `gorm:"not null" json:"stock"`
	CategoryID  *uint              `json:"categoryId"`
	Category    *category.Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Featured    bool               `json:"featured"`
	Images      []Image            `gorm:"foreignKey:ProductID" json:"images"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

type Image struct {
	ID        uint   `gorm:"primaryKey" json:"imageId"`
	ProductID uint   `gorm:"not null;index" json:"-"`
	URL       string `gorm:"not null" json:"url"`
	Alt       string `json:"alt"`
	Position  int    `json:"position"`
}

func (Image) TableName() string {
	return "product_images"
}

// View is the public product shape. SalePrice and DiscountPercent are set
// only while a running sale covers the product's category.
type View struct {
	Product
	SalePrice       *decimal.Decimal `json:"salePrice,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}

// UnitPrice is what a customer pays for one unit right now.
func (v View) UnitPrice() decimal.Decimal {
	if v.SalePrice != nil {
		return *v.SalePrice
	}
	return v.Price
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// Filter narrows the public product list. Price bounds apply to list price.
type Filter struct {
	CategorySlug string
	Query        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Featured     *bool
	Sort         string
	Page         int
	Limit        int
}

func (f Filter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
