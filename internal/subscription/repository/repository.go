package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) subscriptiondomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *subscriptiondomain.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var s subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindActiveByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var s subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).
		Where("taxpayer_id = ? AND is_active = ?", taxpayerID, true).
		Order("ends_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	var items []subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).
		Where("taxpayer_id = ?", taxpayerID).
		Order("starts_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, s *subscriptiondomain.Subscription) error {
	return r.db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"is_active":           s.IsActive,
			"trial_converted":     s.TrialConverted,
			"renewal_count":       s.RenewalCount,
			"next_billing_date":   s.NextBillingDate,
			"cancellation_reason": s.CancellationReason,
			"updated_at":          s.UpdatedAt,
		}).Error
}

func (r *repository) DeactivateExpired(ctx context.Context, ref time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("is_active = ? AND ends_at <= ?", true, ref).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": ref,
		})
	return result.RowsAffected, result.Error
}
