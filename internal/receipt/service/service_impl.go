// Package service implements receipt submission and lookup.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/encode"
	"github.com/fiscalware/fiscalway/internal/fiscal/sign"
	"github.com/fiscalware/fiscalway/internal/observability/metrics"
	"github.com/fiscalware/fiscalway/internal/receipt/domain"
	"github.com/fiscalware/fiscalway/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type serviceParams struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	FiscalCfg *config.FiscalConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
	Repo      domain.Repository
	Devices   devicedomain.Repository
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	fiscalCfg *config.FiscalConfigHolder
	metrics   *metrics.Metrics
	repo      domain.Repository
	devices   devicedomain.Repository
}

func NewService(p serviceParams) domain.Service {
	return &Service{
		log:       p.Log.Named("receipt.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		fiscalCfg: p.FiscalCfg,
		metrics:   p.Metrics,
		repo:      p.Repo,
		devices:   p.Devices,
	}
}

// Submit fiscalizes one receipt: it assigns the next per-day counter and
// lifetime global number, signs the canonical payload with the device key,
// chains the hash to the previous receipt and fans the tax totals out into
// fiscal counters. All writes land in one transaction; a concurrent
// submission on the same device loses the optimistic guard and can simply
// be retried.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.SubmitResponse, error) {
	if req.DeviceID <= 0 {
		return nil, devicedomain.ErrInvalidDeviceID
	}
	data := req.Receipt
	if !data.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidType, string(data.Type))
	}
	currency := strings.ToUpper(strings.TrimSpace(data.Currency))
	if currency == "" {
		return nil, domain.ErrInvalidCurrency
	}
	invoiceNo := strings.TrimSpace(data.InvoiceNo)
	if invoiceNo == "" {
		return nil, domain.ErrInvalidInvoice
	}
	if len(data.Lines) == 0 {
		return nil, domain.ErrNoLines
	}
	if !data.Total.IsPositive() {
		return nil, domain.ErrInvalidTotal
	}

	dev, err := s.devices.FindByDeviceID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, domain.ErrDeviceNotFound
	}
	if dev.FiscalDayStatus != devicedomain.FiscalDayOpened {
		return nil, fmt.Errorf("%w: device %d is %s", domain.ErrDayNotOpen, dev.DeviceID, dev.FiscalDayStatus)
	}

	now := s.clock.Now().UTC()
	date := now
	if data.Date != nil {
		date = data.Date.UTC()
	}

	counter := dev.LastReceiptCounter + 1
	globalNo := dev.LastReceiptGlobalNo + 1
	fiscalDayNo := dev.LastFiscalDayNo + 1

	payload := encode.ReceiptPayload(dev.DeviceID, string(data.Type), currency, globalNo, date, data.Total, dev.PreviousReceiptHash)
	hash := sign.Hash(payload)

	key, err := sign.ParsePrivateKey(dev.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	signature, err := sign.Payload(payload, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	rc := &domain.Receipt{
		ID:                s.genID.Generate(),
		TaxpayerID:        dev.TaxpayerID,
		DeviceID:          dev.DeviceID,
		Type:              data.Type,
		Currency:          currency,
		Counter:           counter,
		GlobalNo:          globalNo,
		FiscalDayNo:       fiscalDayNo,
		InvoiceNo:         invoiceNo,
		Notes:             strings.TrimSpace(data.Notes),
		Date:              date,
		LinesTaxInclusive: true,
		Total:             data.Total,
		Hash:              hash,
		Signature:         signature,
		PreviousHash:      dev.PreviousReceiptHash,
		CreatedAt:         now,
	}
	if data.LinesTaxInclusive != nil {
		rc.LinesTaxInclusive = *data.LinesTaxInclusive
	}
	if err := marshalDocuments(rc, data); err != nil {
		return nil, err
	}

	counters := s.fanOutCounters(rc, data.Taxes, data.Payments)

	if err := s.repo.Save(ctx, rc, dev, counters); err != nil {
		s.log.Error("receipt submission failed",
			zap.Int64("device_id", dev.DeviceID),
			zap.Int64("receipt_global_no", globalNo),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordReceiptSubmitted(ctx, string(data.Type))
	s.log.Info("receipt fiscalized",
		zap.Int64("device_id", dev.DeviceID),
		zap.Int64("fiscal_day_no", fiscalDayNo),
		zap.Int64("receipt_counter", counter),
		zap.Int64("receipt_global_no", globalNo))

	return &domain.SubmitResponse{
		Receipt:         rc,
		ReceiptCounter:  counter,
		ReceiptGlobalNo: globalNo,
		FiscalDayNo:     fiscalDayNo,
		Hash:            hash,
		Signature:       signature,
	}, nil
}

// fanOutCounters turns the receipt's tax summaries into fiscal counters for
// the running day: sales contribute SaleByTax, credit notes contribute
// CreditNoteByTax. Values stay positive, the aggregation applies the credit
// sign. The money type comes from the first payment, falling back to the
// configured default so balance totals never lose a receipt.
func (s *Service) fanOutCounters(rc *domain.Receipt, taxes []domain.TaxSummary, payments []domain.Payment) []fiscaldomain.Counter {
	counterType := fiscaldomain.CounterSaleByTax
	if rc.Type == domain.TypeCreditNote {
		counterType = fiscaldomain.CounterCreditNoteByTax
	}

	moneyType := s.fiscalCfg.Get().DefaultMoneyType
	if len(payments) > 0 && strings.TrimSpace(payments[0].MoneyTypeCode) != "" {
		moneyType = strings.TrimSpace(payments[0].MoneyTypeCode)
	}

	counters := make([]fiscaldomain.Counter, 0, len(taxes))
	for _, t := range taxes {
		taxAmount := t.TaxAmount
		counters = append(counters, fiscaldomain.Counter{
			ID:             s.genID.Generate(),
			DeviceID:       rc.DeviceID,
			FiscalDayNo:    rc.FiscalDayNo,
			Type:           counterType,
			Currency:       rc.Currency,
			TaxPercent:     t.TaxPercent,
			TaxID:          t.TaxID,
			MoneyType:      moneyType,
			Value:          t.SalesAmountWithTax,
			TaxAmountValue: &taxAmount,
			CreatedAt:      rc.CreatedAt,
		})
	}
	return counters
}

func marshalDocuments(rc *domain.Receipt, data domain.ReceiptData) error {
	lines, err := json.Marshal(data.Lines)
	if err != nil {
		return err
	}
	taxes, err := json.Marshal(data.Taxes)
	if err != nil {
		return err
	}
	rc.Lines = datatypes.JSON(lines)
	rc.Taxes = datatypes.JSON(taxes)

	if len(data.Payments) > 0 {
		payments, err := json.Marshal(data.Payments)
		if err != nil {
			return err
		}
		rc.Payments = datatypes.JSON(payments)
	}
	if len(data.BuyerData) > 0 {
		rc.BuyerData = datatypes.JSON(data.BuyerData)
	}
	if data.CreditDebitNote != nil {
		note, err := json.Marshal(data.CreditDebitNote)
		if err != nil {
			return err
		}
		rc.CreditDebitNote = datatypes.JSON(note)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	receiptID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	rc, err := s.repo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, domain.ErrNotFound
	}
	return rc, nil
}

func (s *Service) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]domain.Receipt, error) {
	if deviceID <= 0 {
		return nil, devicedomain.ErrInvalidDeviceID
	}
	return s.repo.ListByDevice(ctx, deviceID, limit)
}

func (s *Service) ListByTaxpayer(ctx context.Context, taxpayerID, search string, page pagination.Pagination) (*domain.ListResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(taxpayerID))
	if err != nil {
		return nil, domain.ErrInvalidTaxpayer
	}
	receipts, info, err := s.repo.ListByTaxpayer(ctx, domain.ListByTaxpayerRequest{
		TaxpayerID: id,
		Search:     strings.TrimSpace(search),
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{Receipts: receipts, PageInfo: info}, nil
}
