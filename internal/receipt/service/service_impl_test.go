package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	devicerepo "github.com/fiscalware/fiscalway/internal/device/repository"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/encode"
	fiscalrepo "github.com/fiscalware/fiscalway/internal/fiscal/repository"
	"github.com/fiscalware/fiscalway/internal/fiscal/sign"
	"github.com/fiscalware/fiscalway/internal/receipt/domain"
	"github.com/fiscalware/fiscalway/internal/receipt/repository"
	"github.com/fiscalware/fiscalway/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	svc   *Service
	db    *gorm.DB
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&devicedomain.Device{},
		&domain.Receipt{},
		&fiscaldomain.Counter{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC))

	svc := &Service{
		log:       zaptest.NewLogger(t),
		genID:     node,
		clock:     fake,
		fiscalCfg: config.NewStaticFiscalConfigHolder(config.DefaultFiscalConfig()),
		repo:      repository.NewRepository(db),
		devices:   devicerepo.NewRepository(db),
	}

	return &testEnv{svc: svc, db: db, clock: fake, node: node}
}

func (e *testEnv) seedDevice(t *testing.T, deviceID int64, status devicedomain.FiscalDayStatus) *devicedomain.Device {
	t.Helper()

	keys, err := sign.GenerateKeyMaterial("SN-RCPT", e.clock.Now())
	require.NoError(t, err)

	dev := &devicedomain.Device{
		ID:              e.node.Generate(),
		TaxpayerID:      e.node.Generate(),
		DeviceID:        deviceID,
		SerialNo:        "SN-RCPT",
		ActivationKey:   "KEY",
		Version:         "1.0.0",
		Certificate:     keys.Certificate,
		PublicKey:       keys.PublicKey,
		PrivateKey:      keys.PrivateKey,
		FiscalDayStatus: status,
		LastFiscalDayNo: 4,
		OperatingMode:   devicedomain.OperatingModeOnline,
		CreatedAt:       e.clock.Now(),
		UpdatedAt:       e.clock.Now(),
	}
	if status == devicedomain.FiscalDayOpened {
		opened := e.clock.Now()
		dev.FiscalDayOpenedAt = &opened
	}
	require.NoError(t, e.db.Create(dev).Error)
	return dev
}

func submitReq(deviceID int64, invoiceNo, total string) domain.SubmitRequest {
	pct := decimal.RequireFromString("15.00")
	tax := decimal.RequireFromString("15.65")
	return domain.SubmitRequest{
		DeviceID: deviceID,
		Receipt: domain.ReceiptData{
			Type:      domain.TypeFiscalInvoice,
			Currency:  "usd",
			InvoiceNo: invoiceNo,
			Lines: []domain.Line{{
				LineNo:   1,
				Name:     "Widget",
				Price:    decimal.RequireFromString(total),
				Quantity: decimal.NewFromInt(1),
				Total:    decimal.RequireFromString(total),
			}},
			Taxes: []domain.TaxSummary{{
				TaxPercent:         &pct,
				TaxAmount:          tax,
				SalesAmountWithTax: decimal.RequireFromString(total),
			}},
			Payments: []domain.Payment{{
				MoneyTypeCode: "Card",
				Amount:        decimal.RequireFromString(total),
			}},
			Total: decimal.RequireFromString(total),
		},
	}
}

func TestSubmitAssignsCountersAndChainsHashes(t *testing.T) {
	env := newTestEnv(t)
	dev := env.seedDevice(t, 900, devicedomain.FiscalDayOpened)
	ctx := context.Background()

	first, err := env.svc.Submit(ctx, submitReq(900, "INV-001", "120.00"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ReceiptCounter)
	assert.Equal(t, int64(1), first.ReceiptGlobalNo)
	assert.Equal(t, int64(5), first.FiscalDayNo)
	assert.Empty(t, first.Receipt.PreviousHash)

	wantPayload := encode.ReceiptPayload(900, "FiscalInvoice", "USD", 1,
		env.clock.Now(), decimal.RequireFromString("120.00"), "")
	assert.Equal(t, sign.Hash(wantPayload), first.Hash)

	key, err := sign.ParsePrivateKey(dev.PrivateKey)
	require.NoError(t, err)
	wantSig, err := sign.Payload(wantPayload, key)
	require.NoError(t, err)
	assert.Equal(t, wantSig, first.Signature)

	env.clock.Advance(5 * time.Minute)
	second, err := env.svc.Submit(ctx, submitReq(900, "INV-002", "80.00"))
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.ReceiptCounter)
	assert.Equal(t, int64(2), second.ReceiptGlobalNo)
	assert.Equal(t, first.Hash, second.Receipt.PreviousHash,
		"second receipt must chain to the first receipt's hash")

	var reloaded devicedomain.Device
	require.NoError(t, env.db.First(&reloaded, "device_id = ?", int64(900)).Error)
	assert.Equal(t, int64(2), reloaded.LastReceiptCounter)
	assert.Equal(t, int64(2), reloaded.LastReceiptGlobalNo)
	assert.Equal(t, second.Hash, reloaded.PreviousReceiptHash)
}

func TestSubmitFansOutFiscalCounters(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 901, devicedomain.FiscalDayOpened)
	ctx := context.Background()

	_, err := env.svc.Submit(ctx, submitReq(901, "INV-010", "115.65"))
	require.NoError(t, err)

	counters, err := fiscalrepo.NewCounterStore(env.db).ListForDay(ctx, 901, 5)
	require.NoError(t, err)
	require.Len(t, counters, 1)

	c := counters[0]
	assert.Equal(t, fiscaldomain.CounterSaleByTax, c.Type)
	assert.Equal(t, "USD", c.Currency)
	assert.Equal(t, "Card", c.MoneyType)
	assert.True(t, c.Value.Equal(decimal.RequireFromString("115.65")))
	require.NotNil(t, c.TaxAmountValue)
	assert.True(t, c.TaxAmountValue.Equal(decimal.RequireFromString("15.65")))
}

func TestSubmitCreditNoteUsesCreditCounterType(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 902, devicedomain.FiscalDayOpened)
	ctx := context.Background()

	req := submitReq(902, "CN-001", "30.00")
	req.Receipt.Type = domain.TypeCreditNote
	req.Receipt.Payments = nil

	_, err := env.svc.Submit(ctx, req)
	require.NoError(t, err)

	counters, err := fiscalrepo.NewCounterStore(env.db).ListForDay(ctx, 902, 5)
	require.NoError(t, err)
	require.Len(t, counters, 1)
	assert.Equal(t, fiscaldomain.CounterCreditNoteByTax, counters[0].Type)
	assert.Equal(t, "Cash", counters[0].MoneyType,
		"missing payments fall back to the configured default money type")
}

func TestSubmitRejectsWhenDayNotOpen(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 903, devicedomain.FiscalDayClosed)

	_, err := env.svc.Submit(context.Background(), submitReq(903, "INV-020", "10.00"))
	assert.ErrorIs(t, err, domain.ErrDayNotOpen)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 904, devicedomain.FiscalDayOpened)
	ctx := context.Background()

	req := submitReq(904, "INV-030", "10.00")
	req.Receipt.Type = "Quote"
	_, err := env.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	req = submitReq(904, "INV-030", "10.00")
	req.Receipt.Currency = "  "
	_, err = env.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

	req = submitReq(904, "  ", "10.00")
	_, err = env.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInvoice)

	req = submitReq(904, "INV-030", "10.00")
	req.Receipt.Lines = nil
	_, err = env.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrNoLines)

	req = submitReq(904, "INV-030", "10.00")
	req.Receipt.Total = decimal.Zero
	_, err = env.svc.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidTotal)

	_, err = env.svc.Submit(ctx, submitReq(99999, "INV-030", "10.00"))
	assert.ErrorIs(t, err, domain.ErrDeviceNotFound)
}

func TestListByTaxpayerPaginates(t *testing.T) {
	env := newTestEnv(t)
	dev := env.seedDevice(t, 905, devicedomain.FiscalDayOpened)
	ctx := context.Background()

	for _, inv := range []string{"INV-100", "INV-101", "INV-102"} {
		_, err := env.svc.Submit(ctx, submitReq(905, inv, "20.00"))
		require.NoError(t, err)
		env.clock.Advance(time.Second)
	}

	page, err := env.svc.ListByTaxpayer(ctx, dev.TaxpayerID.String(), "", pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Receipts, 2)
	assert.True(t, page.PageInfo.HasMore)
	assert.NotEmpty(t, page.PageInfo.NextPageToken)

	rest, err := env.svc.ListByTaxpayer(ctx, dev.TaxpayerID.String(), "",
		pagination.Pagination{PageSize: 2, PageToken: page.PageInfo.NextPageToken})
	require.NoError(t, err)
	require.Len(t, rest.Receipts, 1)
	assert.False(t, rest.PageInfo.HasMore)

	matched, err := env.svc.ListByTaxpayer(ctx, dev.TaxpayerID.String(), "INV-101", pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, matched.Receipts, 1)
	assert.Equal(t, "INV-101", matched.Receipts[0].InvoiceNo)
}
