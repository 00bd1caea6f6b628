package recommended

import (
	"context"
	"fmt"

	"github.com/wichananm65/storefront-backend/internal/product"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Related(ctx context.Context, p product.Product, limit int) ([]product.Product, error) {
	q := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("id <> ? AND stock > 0", p.ID)
	if p.CategoryID != nil {
		q = q.Where("category_id = ?", *p.CategoryID)
	} else {
		q = q.Where("featured")
	}

	var out []product.Product
	if err := q.Order("featured DESC, created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("recommended.Related: %w", err)
	}
	return out, nil
}
