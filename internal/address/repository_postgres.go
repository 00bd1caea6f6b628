package address

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uint) ([]Address, error) {
	out := make([]Address, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("address.ListByUser: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id uint) (Address, error) {
	var a Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Address{}, ErrNotFound
		}
		return Address{}, fmt.Errorf("address.Get: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return Address{}, fmt.Errorf("address.Create: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	res := r.db.WithContext(ctx).Model(&Address{}).
		Where("id = ? AND user_id = ?", a.ID, a.UserID).
		Updates(map[string]any{
			"label":       a.Label,
			"recipient":   a.Recipient,
			"line1":       a.Line1,
			"line2":       a.Line2,
			"city":        a.City,
			"state":       a.State,
			"postal_code": a.PostalCode,
			"country":     a.Country,
			"phone":       a.Phone,
		})
	if res.Error != nil {
		return Address{}, fmt.Errorf("address.Update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return Address{}, ErrNotFound
	}
	return r.Get(ctx, a.UserID, a.ID)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Address{})
	if res.Error != nil {
		return fmt.Errorf("address.Delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
