package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/sign"
	"github.com/fiscalware/fiscalway/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  devicedomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  devicedomain.Repository
}

func NewService(p serviceParams) devicedomain.Service {
	return &Service{
		log:   p.Log.Named("device.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req devicedomain.RegisterRequest) (*devicedomain.Response, error) {
	taxpayerID, err := snowflake.ParseString(strings.TrimSpace(req.TaxpayerID))
	if err != nil {
		return nil, devicedomain.ErrInvalidTaxpayer
	}
	if req.DeviceID <= 0 {
		return nil, devicedomain.ErrInvalidDeviceID
	}
	serialNo := strings.TrimSpace(req.SerialNo)
	if serialNo == "" {
		return nil, devicedomain.ErrInvalidSerialNo
	}
	if strings.TrimSpace(req.ActivationKey) == "" {
		return nil, devicedomain.ErrInvalidActivation
	}

	existing, err := s.repo.FindByDeviceID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, devicedomain.ErrDeviceExists
	}

	now := s.clock.Now()
	keys, err := sign.GenerateKeyMaterial(serialNo, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", devicedomain.ErrKeyGeneration, err)
	}

	var taxes datatypes.JSON
	if len(req.Taxes) > 0 {
		raw, err := json.Marshal(req.Taxes)
		if err != nil {
			return nil, err
		}
		taxes = datatypes.JSON(raw)
	}

	dev := &devicedomain.Device{
		ID:            s.genID.Generate(),
		TaxpayerID:    taxpayerID,
		DeviceID:      req.DeviceID,
		SerialNo:      serialNo,
		ActivationKey: strings.TrimSpace(req.ActivationKey),
		Version:       strings.TrimSpace(req.Version),

		Certificate: keys.Certificate,
		PublicKey:   keys.PublicKey,
		PrivateKey:  keys.PrivateKey,

		FiscalDayStatus: devicedomain.FiscalDayClosed,
		OperatingMode:   devicedomain.OperatingModeOnline,
		VATNumber:       strings.TrimSpace(req.VATNumber),
		ApplicableTaxes: taxes,

		CertificateValidTill: &keys.ValidTill,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, dev); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, devicedomain.ErrDeviceExists
		}
		return nil, err
	}

	s.log.Info("device registered",
		zap.Int64("device_id", dev.DeviceID),
		zap.String("serial_no", dev.SerialNo),
		zap.String("taxpayer_id", dev.TaxpayerID.String()),
	)

	resp := toResponse(dev)
	return &resp, nil
}

func (s *Service) GetByDeviceID(ctx context.Context, deviceID int64) (*devicedomain.Response, error) {
	dev, err := s.repo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, devicedomain.ErrNotFound
	}
	resp := toResponse(dev)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req devicedomain.ListRequest) ([]devicedomain.Response, error) {
	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := make([]devicedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) UpdateConfig(ctx context.Context, req devicedomain.UpdateConfigRequest) (*devicedomain.Response, error) {
	dev, err := s.repo.FindByDeviceID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, devicedomain.ErrNotFound
	}

	if req.VATNumber != nil {
		dev.VATNumber = strings.TrimSpace(*req.VATNumber)
	}
	if req.Taxes != nil {
		raw, err := json.Marshal(req.Taxes)
		if err != nil {
			return nil, err
		}
		dev.ApplicableTaxes = datatypes.JSON(raw)
	}

	dev.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, dev); err != nil {
		return nil, err
	}

	resp := toResponse(dev)
	return &resp, nil
}

func toResponse(dev *devicedomain.Device) devicedomain.Response {
	var taxes []devicedomain.ApplicableTax
	if len(dev.ApplicableTaxes) > 0 {
		// best effort; malformed rows surface as empty taxes
		_ = json.Unmarshal(dev.ApplicableTaxes, &taxes)
	}

	return devicedomain.Response{
		ID:                   dev.ID.String(),
		TaxpayerID:           dev.TaxpayerID.String(),
		DeviceID:             dev.DeviceID,
		SerialNo:             dev.SerialNo,
		Version:              dev.Version,
		Certificate:          dev.Certificate,
		PublicKey:            dev.PublicKey,
		FiscalDayStatus:      dev.FiscalDayStatus,
		LastFiscalDayNo:      dev.LastFiscalDayNo,
		LastReceiptGlobalNo:  dev.LastReceiptGlobalNo,
		OperatingMode:        dev.OperatingMode,
		VATNumber:            dev.VATNumber,
		Taxes:                taxes,
		CertificateValidTill: dev.CertificateValidTill,
		CreatedAt:            dev.CreatedAt,
	}
}
