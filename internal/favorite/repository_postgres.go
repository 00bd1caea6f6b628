package favorite

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID uint) ([]Favorite, error) {
	out := make([]Favorite, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("favorite.List: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Favorite{UserID: userID, ProductID: productID}).Error
	if err != nil {
		return fmt.Errorf("favorite.Add: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&Favorite{}).Error
	if err != nil {
		return fmt.Errorf("favorite.Remove: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("favorite.Exists: %w", err)
	}
	return n > 0, nil
}
