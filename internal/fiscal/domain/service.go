package domain

import (
	"context"

	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
)

// DayResponse reports the device day state after a transition.
type DayResponse struct {
	FiscalDayNo     int64                        `json:"fiscal_day_no"`
	FiscalDayStatus devicedomain.FiscalDayStatus `json:"fiscal_day_status"`
}

// Service is the narrow contract the surrounding CRUD layer calls into.
type Service interface {
	OpenFiscalDay(ctx context.Context, deviceID int64) (*DayResponse, error)
	CloseFiscalDay(ctx context.Context, deviceID int64) (*DayResponse, error)
	RecordCounters(ctx context.Context, deviceID, fiscalDayNo int64, counters []Counter) error
	GetFiscalCounters(ctx context.Context, deviceID, fiscalDayNo int64) ([]Counter, error)
	ListDaySignatures(ctx context.Context, deviceID int64) ([]DaySignature, error)
}
