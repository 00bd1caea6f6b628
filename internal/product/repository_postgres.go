package product

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") })
}

var sortOrders = map[string]string{
	SortNewest:    "products.created_at DESC, products.id DESC",
	SortPriceAsc:  "products.price ASC, products.id DESC",
	SortPriceDesc: "products.price DESC, products.id DESC",
	SortName:      "lower(products.name) ASC, products.id DESC",
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&Product{})
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("products.name ILIKE ?", "%"+escapeLike(s)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.Featured != nil {
		q = q.Where("products.featured = ?", *f.Featured)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("product.List: %w", err)
	}

	order, ok := sortOrders[f.Sort]
	if !ok {
		order = sortOrders[SortNewest]
	}
	out := make([]Product, 0)
	err := withImages(q.Select("products.*")).
		Order(order).
		Limit(f.Limit).
		Offset(f.offset()).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("product.List: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) first(ctx context.Context, op string, query any, args ...any) (Product, error) {
	var p Product
	if err := withImages(r.db.WithContext(ctx)).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint) (Product, error) {
	return r.first(ctx, "product.GetByID", "products.id = ?", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return r.first(ctx, "product.GetBySlug", "products.slug = ?", slug)
}

func (r *PostgresRepository) GetMany(ctx context.Context, ids []uint) (map[uint]Product, error) {
	out := make(map[uint]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Product
	if err := withImages(r.db.WithContext(ctx)).Where("products.id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("product.GetMany: %w", err)
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	p.Category = nil
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Product{}, ErrSlugExists
		}
		return Product{}, fmt.Errorf("product.Create: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PostgresRepository) Update(ctx context.Context, p Product, replaceImages bool) (Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Product{ID: p.ID}).Updates(map[string]any{
			"name":        p.Name,
			"slug":        p.Slug,
			"description": p.Description,
			"price":       p.Price,
			"stock":       p.Stock,
			"category_id": p.CategoryID,
			"featured":    p.Featured,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if !replaceImages {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&Image{}).Error; err != nil {
			return err
		}
		if len(p.Images) == 0 {
			return nil
		}
		imgs := slices.Clone(p.Images)
		for i := range imgs {
			imgs[i].ID = 0
			imgs[i].ProductID = p.ID
		}
		return tx.Create(&imgs).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return Product{}, ErrNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return Product{}, ErrSlugExists
		}
		return Product{}, fmt.Errorf("product.Update: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Table("order_items").Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrReferenced
		}
		for _, table := range []string{"product_images", "cart_items", "favorites", "recently_viewed"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE product_id = ?", id).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrReferenced), errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	}
	return fmt.Errorf("product.Delete: %w", err)
}

func (r *PostgresRepository) AdjustStock(ctx context.Context, deltas map[uint]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return AdjustStockTx(tx, deltas)
	})
}

// AdjustStockTx applies deltas inside an existing transaction. Rows are
// touched in id order so concurrent adjustments lock consistently.
func AdjustStockTx(tx *gorm.DB, deltas map[uint]int) error {
	ids := make([]uint, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		d := deltas[id]
		if d == 0 {
			continue
		}
		res := tx.Model(&Product{}).
			Where("id = ? AND stock + ? >= 0", id, d).
			Update("stock", gorm.Expr("stock + ?", d))
		if res.Error != nil {
			return fmt.Errorf("product.AdjustStock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
	}
	return nil
}
