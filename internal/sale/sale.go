package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID              uint            `gorm:"primaryKey" json:"saleId"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discountPercent"`
	StartsAt        time.Time       `gorm:"not null" json:"startsAt"`
	EndsAt          time.Time       `gorm:"not null" json:"endsAt"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
	Categories      []SaleCategory  `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"-"`
	CategoryIDs     []uint          `gorm:"-" json:"categoryIds"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Sale) TableName() string {
	return "sales"
}

type SaleCategory struct {
	SaleID     uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

func (SaleCategory) TableName() string {
	return "sale_categories"
}

// Running reports whether the sale applies at t.
func (s Sale) Running(t time.Time) bool {
	return s.Active && !t.Before(s.StartsAt) && t.Before(s.EndsAt)
}

func (s *Sale) syncCategoryIDs() {
	s.CategoryIDs = make([]uint, 0, len(s.Categories))
	for _, c := range s.Categories {
		s.CategoryIDs = append(s.CategoryIDs, c.CategoryID)
	}
}

func (s *Sale) syncCategories() {
	s.Categories = make([]SaleCategory, 0, len(s.CategoryIDs))
	for _, id := range s.CategoryIDs {
		s.Categories = append(s.Categories, SaleCategory{SaleID: s.ID, CategoryID: id})
	}
}
