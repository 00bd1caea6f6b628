package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID uint) ([]CartItem, error) {
	out := make([]CartItem, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("cart.List: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, productID uint) (CartItem, error) {
	var it CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&it).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CartItem{}, ErrItemNotFound
		}
		return CartItem{}, fmt.Errorf("cart.Get: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) upsert(ctx context.Context, userID, productID uint, qty int, quantity clause.Expr) (CartItem, error) {
	it := CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   quantity,
					"updated_at": time.Now().UTC(),
				}),
			},
			clause.Returning{},
		).
		Create(&it).Error
	return it, err
}

// Increment relies on the (user_id, product_id) unique constraint so two
// concurrent adds end up as one row with the summed quantity.
func (r *PostgresRepository) Increment(ctx context.Context, userID, productID uint, qty int) (CartItem, error) {
	it, err := r.upsert(ctx, userID, productID, qty, gorm.Expr("cart_items.quantity + EXCLUDED.quantity"))
	if err != nil {
		return CartItem{}, fmt.Errorf("cart.Increment: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) SetQuantity(ctx context.Context, userID, productID uint, qty int) (CartItem, error) {
	it, err := r.upsert(ctx, userID, productID, qty, gorm.Expr("EXCLUDED.quantity"))
	if err != nil {
		return CartItem{}, fmt.Errorf("cart.SetQuantity: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&CartItem{}).Error
	if err != nil {
		return fmt.Errorf("cart.Remove: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("cart.Clear: %w", err)
	}
	return nil
}
