package domain

import (
	"context"

	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
)

// CounterStore persists append-only fiscal counters. Counters written by a
// committed receipt submission must be visible to a subsequent ListForDay.
type CounterStore interface {
	Append(ctx context.Context, counters []Counter) error
	ListForDay(ctx context.Context, deviceID, fiscalDayNo int64) ([]Counter, error)
}

// DayStore persists device day-state transitions. CommitClose applies the
// status flip, the day-number increment and the signature artifact in one
// transaction; a crash mid-close must leave either all or none of them.
type DayStore interface {
	GetDevice(ctx context.Context, deviceID int64) (*devicedomain.Device, error)
	OpenDay(ctx context.Context, dev *devicedomain.Device) error
	CommitClose(ctx context.Context, dev *devicedomain.Device, sig *DaySignature) error
	MarkCloseFailed(ctx context.Context, deviceID int64) error
	ListSignatures(ctx context.Context, deviceID int64) ([]DaySignature, error)
}
