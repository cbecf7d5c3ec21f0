package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/aggregate"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/encode"
	"github.com/fiscalware/fiscalway/internal/fiscal/sign"
	"github.com/fiscalware/fiscalway/internal/lock"
	"github.com/fiscalware/fiscalway/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	closeResultCommitted  = "committed"
	closeResultFailed     = "failed"
	closeResultRejected   = "rejected"
	closeResultContention = "contention"
)

type serviceParams struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Locker    lock.Locker
	FiscalCfg *config.FiscalConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Counters  fiscaldomain.CounterStore
	Days      fiscaldomain.DayStore
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	locker    lock.Locker
	fiscalCfg *config.FiscalConfigHolder
	metrics   *metrics.Metrics
	counters  fiscaldomain.CounterStore
	days      fiscaldomain.DayStore
}

func NewService(p serviceParams) fiscaldomain.Service {
	return &Service{
		log:       p.Log.Named("fiscal.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		locker:    p.Locker,
		fiscalCfg: p.FiscalCfg,
		metrics:   p.Metrics,
		counters:  p.Counters,
		days:      p.Days,
	}
}

func dayLockKey(deviceID int64) string {
	return fmt.Sprintf("fiscal:day:%d", deviceID)
}

// OpenFiscalDay transitions a closed device into an open day. The new day
// number is implicit: counters recorded while the day is open carry
// last_fiscal_day_no+1, which only becomes the device's committed day number
// on a successful close.
func (s *Service) OpenFiscalDay(ctx context.Context, deviceID int64) (*fiscaldomain.DayResponse, error) {
	dev, err := s.days.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fiscaldomain.ErrDeviceNotFound
	}
	if dev.FiscalDayStatus != devicedomain.FiscalDayClosed {
		return nil, fmt.Errorf("%w: day already open for device %d", fiscaldomain.ErrInvalidTransition, deviceID)
	}

	now := s.clock.Now()
	dev.FiscalDayOpenedAt = &now
	dev.UpdatedAt = now

	if err := s.days.OpenDay(ctx, dev); err != nil {
		return nil, err
	}

	s.metrics.RecordDayOpen(ctx)
	s.log.Info("fiscal day opened",
		zap.Int64("device_id", deviceID),
		zap.Int64("fiscal_day_no", dev.LastFiscalDayNo+1),
	)

	return &fiscaldomain.DayResponse{
		FiscalDayNo:     dev.LastFiscalDayNo + 1,
		FiscalDayStatus: devicedomain.FiscalDayOpened,
	}, nil
}

// CloseFiscalDay runs the closing engine: aggregate the open day's counters,
// render the canonical payload, hash and sign it, then commit the status
// flip, day increment and signature in one transaction.
//
// Engine failures after validation move the device to FiscalDayCloseFailed
// and keep the day number unchanged, so a later retry re-closes the same day
// over the same counters and yields the same hash and signature.
func (s *Service) CloseFiscalDay(ctx context.Context, deviceID int64) (*fiscaldomain.DayResponse, error) {
	cfg := s.fiscalCfg.Get()
	start := s.clock.Now()

	ctx, cancel := context.WithTimeout(ctx, cfg.CloseTimeout)
	defer cancel()

	token, ok, err := s.locker.TryLock(ctx, dayLockKey(deviceID), cfg.CloseLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordLockContention(ctx)
		s.metrics.RecordDayClose(ctx, closeResultContention, s.clock.Now().Sub(start))
		return nil, fiscaldomain.ErrConcurrentTransition
	}
	defer func() {
		if relErr := s.locker.Release(context.WithoutCancel(ctx), dayLockKey(deviceID), token); relErr != nil {
			s.log.Warn("day lock release failed", zap.Int64("device_id", deviceID), zap.Error(relErr))
		}
	}()

	dev, err := s.days.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		s.metrics.RecordDayClose(ctx, closeResultRejected, s.clock.Now().Sub(start))
		return nil, fiscaldomain.ErrDeviceNotFound
	}

	// CloseFailed is a retryable state: the same day is closed again.
	if dev.FiscalDayStatus != devicedomain.FiscalDayOpened &&
		dev.FiscalDayStatus != devicedomain.FiscalDayCloseFailed {
		s.metrics.RecordDayClose(ctx, closeResultRejected, s.clock.Now().Sub(start))
		return nil, fmt.Errorf("%w: no open day for device %d", fiscaldomain.ErrInvalidTransition, deviceID)
	}

	closingDayNo := dev.LastFiscalDayNo + 1

	sig, err := s.buildSignature(ctx, dev, closingDayNo)
	if err != nil {
		// The engine failed after validation: record the failed state so
		// callers know device state changed.
		if markErr := s.days.MarkCloseFailed(ctx, deviceID); markErr != nil {
			s.log.Error("marking close failed",
				zap.Int64("device_id", deviceID),
				zap.Error(markErr),
			)
		}
		s.metrics.RecordDayClose(ctx, closeResultFailed, s.clock.Now().Sub(start))
		s.log.Error("fiscal day close failed",
			zap.Int64("device_id", deviceID),
			zap.Int64("fiscal_day_no", closingDayNo),
			zap.Error(err),
		)
		return nil, err
	}

	dev.UpdatedAt = s.clock.Now()
	if err := s.days.CommitClose(ctx, dev, sig); err != nil {
		if errors.Is(err, fiscaldomain.ErrConcurrentTransition) {
			s.metrics.RecordDayClose(ctx, closeResultContention, s.clock.Now().Sub(start))
		}
		return nil, err
	}

	s.metrics.RecordDayClose(ctx, closeResultCommitted, s.clock.Now().Sub(start))
	s.log.Info("fiscal day closed",
		zap.Int64("device_id", deviceID),
		zap.Int64("fiscal_day_no", closingDayNo),
		zap.String("hash", sig.Hash),
	)

	return &fiscaldomain.DayResponse{
		FiscalDayNo:     closingDayNo,
		FiscalDayStatus: devicedomain.FiscalDayClosed,
	}, nil
}

func (s *Service) buildSignature(ctx context.Context, dev *devicedomain.Device, closingDayNo int64) (*fiscaldomain.DaySignature, error) {
	counters, err := s.counters.ListForDay(ctx, dev.DeviceID, closingDayNo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fiscaldomain.ErrAggregation, err)
	}

	sum, err := aggregate.Summarize(counters)
	if err != nil {
		return nil, err
	}

	openedAt := dev.FiscalDayOpenedAt
	if openedAt == nil {
		// A CloseFailed retry can run after the opened-at was never set;
		// fall back to the zero time so the payload stays reproducible.
		openedAt = &time.Time{}
	}

	payload := encode.DayPayload(dev.DeviceID, dev.LastFiscalDayNo, *openedAt, sum)
	hash := sign.Hash(payload)

	key, err := sign.ParsePrivateKey(dev.PrivateKey)
	if err != nil {
		return nil, err
	}
	signature, err := sign.Payload(payload, key)
	if err != nil {
		return nil, err
	}

	return &fiscaldomain.DaySignature{
		ID:          s.genID.Generate(),
		DeviceID:    dev.DeviceID,
		FiscalDayNo: closingDayNo,
		Hash:        hash,
		Signature:   signature,
		CreatedAt:   s.clock.Now(),
	}, nil
}

// RecordCounters appends counters to an open day. Values must be
// non-negative; the credit-note sign convention is applied at aggregation
// time, not at rest.
func (s *Service) RecordCounters(ctx context.Context, deviceID, fiscalDayNo int64, counters []fiscaldomain.Counter) error {
	dev, err := s.days.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if dev == nil {
		return fiscaldomain.ErrDeviceNotFound
	}
	if dev.FiscalDayStatus != devicedomain.FiscalDayOpened {
		return fmt.Errorf("%w: counters require an open day", fiscaldomain.ErrInvalidTransition)
	}
	if fiscalDayNo <= 0 {
		fiscalDayNo = dev.LastFiscalDayNo + 1
	}

	now := s.clock.Now()
	for i := range counters {
		c := &counters[i]
		if !c.Type.Valid() {
			return fmt.Errorf("%w: %q", fiscaldomain.ErrUnknownCounterType, c.Type)
		}
		if c.Currency == "" || c.Value.IsNegative() {
			return fiscaldomain.ErrInvalidCounter
		}
		c.ID = s.genID.Generate()
		c.DeviceID = deviceID
		c.FiscalDayNo = fiscalDayNo
		c.CreatedAt = now
	}

	return s.counters.Append(ctx, counters)
}

func (s *Service) GetFiscalCounters(ctx context.Context, deviceID, fiscalDayNo int64) ([]fiscaldomain.Counter, error) {
	dev, err := s.days.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fiscaldomain.ErrDeviceNotFound
	}
	if fiscalDayNo <= 0 {
		fiscalDayNo = dev.LastFiscalDayNo + 1
	}
	return s.counters.ListForDay(ctx, deviceID, fiscalDayNo)
}

func (s *Service) ListDaySignatures(ctx context.Context, deviceID int64) ([]fiscaldomain.DaySignature, error) {
	dev, err := s.days.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fiscaldomain.ErrDeviceNotFound
	}
	return s.days.ListSignatures(ctx, deviceID)
}
