package category

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// PostgresRepository implements Repository using gorm.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	out := make([]Category, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("category.List: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint) (Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("category.GetByID: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("category.GetBySlug: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Category{}, ErrSlugExists
		}
		return Category{}, fmt.Errorf("category.Create: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Category) (Category, error) {
	res := r.db.WithContext(ctx).Model(&Category{ID: c.ID}).Updates(map[string]any{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"image_url":   c.ImageURL,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return Category{}, ErrSlugExists
		}
		return Category{}, fmt.Errorf("category.Update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return Category{}, ErrNotFound
	}
	return r.GetByID(ctx, c.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Table("products").Where("category_id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("category.Delete: %w", err)
		}
		if n > 0 {
			return ErrInUse
		}
		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return ErrInUse
			}
			return fmt.Errorf("category.Delete: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
