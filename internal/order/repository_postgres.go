package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wichananm65/storefront-backend/internal/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") })
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	if err := r.db.WithContext(ctx).Create(&o).Error; err != nil {
		return Order{}, fmt.Errorf("order.Create: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) SetPaymentSession(ctx context.Context, id uint, sessionID string) error {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("payment_session_id", sessionID)
	if res.Error != nil {
		return fmt.Errorf("order.SetPaymentSession: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) first(ctx context.Context, op string, query any, args ...any) (Order, error) {
	var o Order
	err := withItems(r.db.WithContext(ctx)).Where(query, args...).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uint) (Order, error) {
	return r.first(ctx, "order.Get", "orders.id = ?", id)
}

func (r *PostgresRepository) GetByGuestToken(ctx context.Context, token string) (Order, error) {
	return r.first(ctx, "order.GetByGuestToken", "guest_token = ?", token)
}

func (r *PostgresRepository) GetByPaymentIntent(ctx context.Context, intentID string) (Order, error) {
	if intentID == "" {
		return Order{}, ErrNotFound
	}
	return r.first(ctx, "order.GetByPaymentIntent", "payment_intent_id = ?", intentID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := withItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("order.ListByUser: %w", err)
	}
	return orders, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Order, int64, error) {
	filtered := func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			return db.Where("status = ?", f.Status)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("order.List: %w", err)
	}
	var orders []Order
	err := withItems(r.db.WithContext(ctx)).
		Scopes(filtered).
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("order.List: %w", err)
	}
	return orders, total, nil
}

func (r *PostgresRepository) LinkGuestOrders(ctx context.Context, userID uint, email string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("user_id IS NULL AND lower(email) = ?", strings.ToLower(email)).
		Update("user_id", userID)
	if res.Error != nil {
		return 0, fmt.Errorf("order.LinkGuestOrders: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func insertEvent(tx *gorm.DB, eventID, eventType string) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&WebhookEvent{ID: eventID, Type: eventType, ProcessedAt: time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRepository) Apply(ctx context.Context, id uint, ch Change) (Order, error) {
	var out Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ch.EventID != "" {
			fresh, err := insertEvent(tx, ch.EventID, ch.EventType)
			if err != nil {
				return err
			}
			if !fresh {
				return ErrDuplicateEvent
			}
		}

		q := tx.Model(&Order{}).Where("id = ? AND status = ?", id, ch.From)
		if ch.To == StatusShipped {
			q = q.Where("tracking_number = ''")
		}
		res := q.Updates(ch.columns(time.Now()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrStatusChanged
		}

		if len(ch.Stock) > 0 {
			if err := product.AdjustStockTx(tx, ch.Stock); err != nil {
				return err
			}
		}
		return withItems(tx).First(&out, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEvent) || errors.Is(err, ErrStatusChanged) ||
			errors.Is(err, ErrNotFound) || errors.Is(err, product.ErrInsufficientStock) {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("order.Apply: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) EventSeen(ctx context.Context, eventID string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&WebhookEvent{}).Where("id = ?", eventID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("order.EventSeen: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) RecordEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	fresh, err := insertEvent(r.db.WithContext(ctx), eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("order.RecordEvent: %w", err)
	}
	return fresh, nil
}
