package repository

import (
	"context"
	"errors"

	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) devicedomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, dev *devicedomain.Device) error {
	return r.db.WithContext(ctx).Create(dev).Error
}

func (r *repository) FindByDeviceID(ctx context.Context, deviceID int64) (*devicedomain.Device, error) {
	var dev devicedomain.Device
	err := r.db.WithContext(ctx).First(&dev, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

func (r *repository) List(ctx context.Context, req devicedomain.ListRequest) ([]devicedomain.Device, error) {
	var items []devicedomain.Device
	stmt := r.db.WithContext(ctx).Model(&devicedomain.Device{})

	if req.TaxpayerID != 0 {
		stmt = stmt.Where("taxpayer_id = ?", req.TaxpayerID)
	}
	if req.SerialNo != "" {
		stmt = stmt.Where("serial_no = ?", req.SerialNo)
	}
	if req.Status != "" {
		stmt = stmt.Where("fiscal_day_status = ?", req.Status)
	}

	if err := stmt.Order("device_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, dev *devicedomain.Device) error {
	return r.db.WithContext(ctx).
		Model(&devicedomain.Device{}).
		Where("id = ?", dev.ID).
		Updates(map[string]any{
			"version":          dev.Version,
			"vat_number":       dev.VATNumber,
			"applicable_taxes": dev.ApplicableTaxes,
			"operating_mode":   dev.OperatingMode,
			"updated_at":       dev.UpdatedAt,
		}).Error
}
