package repository

import (
	"context"
	"errors"

	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"gorm.io/gorm"
)

type counterStore struct {
	db *gorm.DB
}

func NewCounterStore(db *gorm.DB) fiscaldomain.CounterStore {
	return &counterStore{db: db}
}

func (s *counterStore) Append(ctx context.Context, counters []fiscaldomain.Counter) error {
	if len(counters) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&counters).Error
}

func (s *counterStore) ListForDay(ctx context.Context, deviceID, fiscalDayNo int64) ([]fiscaldomain.Counter, error) {
	var items []fiscaldomain.Counter
	err := s.db.WithContext(ctx).
		Where("device_id = ? AND fiscal_day_no = ?", deviceID, fiscalDayNo).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

type dayStore struct {
	db *gorm.DB
}

func NewDayStore(db *gorm.DB) fiscaldomain.DayStore {
	return &dayStore{db: db}
}

func (s *dayStore) GetDevice(ctx context.Context, deviceID int64) (*devicedomain.Device, error) {
	var dev devicedomain.Device
	err := s.db.WithContext(ctx).First(&dev, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

// OpenDay flips the device into an open day. The status guard in the WHERE
// clause rejects a transition raced by another opener.
func (s *dayStore) OpenDay(ctx context.Context, dev *devicedomain.Device) error {
	result := s.db.WithContext(ctx).
		Model(&devicedomain.Device{}).
		Where("device_id = ? AND fiscal_day_status = ?", dev.DeviceID, devicedomain.FiscalDayClosed).
		Updates(map[string]any{
			"fiscal_day_status":     devicedomain.FiscalDayOpened,
			"fiscal_day_opened_at":  dev.FiscalDayOpenedAt,
			"last_receipt_counter":  0,
			"previous_receipt_hash": "",
			"updated_at":            dev.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiscaldomain.ErrConcurrentTransition
	}
	return nil
}

// CommitClose applies the whole close atomically: the signature row, the day
// increment and the status flip either all land or none do. The optimistic
// guard on last_fiscal_day_no catches a close committed by a racing worker.
func (s *dayStore) CommitClose(ctx context.Context, dev *devicedomain.Device, sig *fiscaldomain.DaySignature) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sig).Error; err != nil {
			return err
		}

		result := tx.Model(&devicedomain.Device{}).
			Where("device_id = ? AND last_fiscal_day_no = ? AND fiscal_day_status IN ?",
				dev.DeviceID,
				sig.FiscalDayNo-1,
				[]devicedomain.FiscalDayStatus{devicedomain.FiscalDayOpened, devicedomain.FiscalDayCloseFailed},
			).
			Updates(map[string]any{
				"fiscal_day_status":    devicedomain.FiscalDayClosed,
				"last_fiscal_day_no":   sig.FiscalDayNo,
				"fiscal_day_opened_at": nil,
				"updated_at":           dev.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiscaldomain.ErrConcurrentTransition
		}
		return nil
	})
}

func (s *dayStore) MarkCloseFailed(ctx context.Context, deviceID int64) error {
	return s.db.WithContext(ctx).
		Model(&devicedomain.Device{}).
		Where("device_id = ? AND fiscal_day_status IN ?",
			deviceID,
			[]devicedomain.FiscalDayStatus{devicedomain.FiscalDayOpened, devicedomain.FiscalDayCloseFailed},
		).
		Update("fiscal_day_status", devicedomain.FiscalDayCloseFailed).Error
}

func (s *dayStore) ListSignatures(ctx context.Context, deviceID int64) ([]fiscaldomain.DaySignature, error) {
	var items []fiscaldomain.DaySignature
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("fiscal_day_no ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
