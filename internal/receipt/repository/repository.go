// Package repository provides the gorm-backed receipt store.
package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/receipt/domain"
	"github.com/fiscalware/fiscalway/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, rc *domain.Receipt, dev *devicedomain.Device, counters []fiscaldomain.Counter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rc).Error; err != nil {
			return err
		}

		res := tx.Model(&devicedomain.Device{}).
			Where("device_id = ? AND last_receipt_global_no = ?", dev.DeviceID, rc.GlobalNo-1).
			Updates(map[string]any{
				"last_receipt_counter":   rc.Counter,
				"last_receipt_global_no": rc.GlobalNo,
				"previous_receipt_hash":  rc.Hash,
				"updated_at":             rc.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiscaldomain.ErrConcurrentTransition
		}

		if len(counters) > 0 {
			if err := tx.Create(&counters).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Receipt, error) {
	var rc domain.Receipt
	err := r.db.WithContext(ctx).First(&rc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *repository) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]domain.Receipt, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	var items []domain.Receipt
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("receipt_global_no DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByTaxpayer(ctx context.Context, req domain.ListByTaxpayerRequest) ([]*domain.Receipt, *pagination.PageInfo, error) {
	limit := req.Page.Limit()

	q := r.db.WithContext(ctx).
		Where("taxpayer_id = ?", req.TaxpayerID)

	if req.Search != "" {
		q = q.Where("invoice_no LIKE ?", "%"+req.Search+"%")
	}

	if req.Page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Page.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if cursor.ID != "" {
			lastID, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				return nil, nil, err
			}
			q = q.Where("id < ?", lastID)
		}
	}

	var items []*domain.Receipt
	err := q.Order("id DESC").
		Limit(limit + 1).
		Find(&items).Error
	if err != nil {
		return nil, nil, err
	}

	info, items := pagination.BuildCursorPageInfo(items, limit, func(rc *domain.Receipt) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: rc.ID.String()})
		return token
	})
	return items, info, nil
}
