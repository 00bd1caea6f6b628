package recent

import (
	"context"
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

func (r *PostgresRepository) Record(ctx context.Context, userID, productID uint, at time.Time, keep int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"viewed_at"}),
		}).Create(&View{UserID: userID, ProductID: productID, ViewedAt: at}).Error
		if err != nil {
			return err
		}
		newest := tx.Model(&View{}).
			Select("id").
			Where("user_id = ?", userID).
			Order("viewed_at DESC, id DESC").
			Limit(keep)
		return tx.Where("user_id = ? AND id NOT IN (?)", userID, newest).Delete(&View{}).Error
	})
	if err != nil {
		return fmt.Errorf("recent.Record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID uint) ([]View, error) {
	out := make([]View, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent.List: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&View{}).Error; err != nil {
		return fmt.Errorf("recent.Clear: %w", err)
	}
	return nil
}
