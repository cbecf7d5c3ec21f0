package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ListRequest struct {
	TaxpayerID snowflake.ID
	SerialNo   string
	Status     FiscalDayStatus
}

type Repository interface {
	Create(ctx context.Context, dev *Device) error
	FindByDeviceID(ctx context.Context, deviceID int64) (*Device, error)
	List(ctx context.Context, req ListRequest) ([]Device, error)
	Update(ctx context.Context, dev *Device) error
}
