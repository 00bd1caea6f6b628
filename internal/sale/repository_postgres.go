package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]Sale, error) {
	out := make([]Sale, 0)
	err := scope(r.db.WithContext(ctx)).
		Preload("Categories").
		Order("starts_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].syncCategoryIDs()
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Sale, error) {
	out, err := r.find(ctx, func(db *gorm.DB) *gorm.DB { return db })
	if err != nil {
		return nil, fmt.Errorf("sale.List: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListRunning(ctx context.Context, now time.Time) ([]Sale, error) {
	out, err := r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("active AND starts_at <= ? AND ends_at > ?", now, now)
	})
	if err != nil {
		return nil, fmt.Errorf("sale.ListRunning: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uint) (Sale, error) {
	var s Sale
	if err := r.db.WithContext(ctx).Preload("Categories").First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, fmt.Errorf("sale.Get: %w", err)
	}
	s.syncCategoryIDs()
	return s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s Sale) (Sale, error) {
	s.syncCategories()
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return Sale{}, ErrUnknownCategory
		}
		return Sale{}, fmt.Errorf("sale.Create: %w", err)
	}
	s.syncCategoryIDs()
	return s, nil
}

// Update rewrites the sale row and replaces its category set in one transaction.
func (r *PostgresRepository) Update(ctx context.Context, s Sale) (Sale, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Sale{ID: s.ID}).Updates(map[string]any{
			"name":             s.Name,
			"description":      s.Description,
			"discount_percent": s.DiscountPercent,
			"starts_at":        s.StartsAt,
			"ends_at":          s.EndsAt,
			"active":           s.Active,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("sale_id = ?", s.ID).Delete(&SaleCategory{}).Error; err != nil {
			return err
		}
		s.syncCategories()
		if len(s.Categories) == 0 {
			return nil
		}
		return tx.Create(&s.Categories).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return Sale{}, ErrNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return Sale{}, ErrUnknownCategory
		}
		return Sale{}, fmt.Errorf("sale.Update: %w", err)
	}
	return r.Get(ctx, s.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Sale{}, id)
	if res.Error != nil {
		return fmt.Errorf("sale.Delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
