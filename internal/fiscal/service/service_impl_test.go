package service

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	devicedomain "github.com/fiscalware/fiscalway/internal/device/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/aggregate"
	fiscaldomain "github.com/fiscalware/fiscalway/internal/fiscal/domain"
	"github.com/fiscalware/fiscalway/internal/fiscal/encode"
	"github.com/fiscalware/fiscalway/internal/fiscal/repository"
	"github.com/fiscalware/fiscalway/internal/fiscal/sign"
	"github.com/fiscalware/fiscalway/internal/lock"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	svc    *Service
	db     *gorm.DB
	locker *lock.LocalLocker
	clock  *clock.FakeClock
	node   *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&devicedomain.Device{},
		&fiscaldomain.Counter{},
		&fiscaldomain.DaySignature{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 5, 2, 6, 0, 0, 0, time.UTC))
	locker := lock.NewLocalLocker()

	svc := &Service{
		log:       zaptest.NewLogger(t),
		genID:     node,
		clock:     fake,
		locker:    locker,
		fiscalCfg: config.NewStaticFiscalConfigHolder(config.DefaultFiscalConfig()),
		counters:  repository.NewCounterStore(db),
		days:      repository.NewDayStore(db),
	}

	return &testEnv{svc: svc, db: db, locker: locker, clock: fake, node: node}
}

func (e *testEnv) seedDevice(t *testing.T, deviceID, lastDayNo int64, status devicedomain.FiscalDayStatus) *devicedomain.Device {
	t.Helper()

	keys, err := sign.GenerateKeyMaterial("SN-TEST", e.clock.Now())
	require.NoError(t, err)

	dev := &devicedomain.Device{
		ID:              e.node.Generate(),
		TaxpayerID:      e.node.Generate(),
		DeviceID:        deviceID,
		SerialNo:        "SN-TEST",
		ActivationKey:   "KEY",
		Version:         "1.0.0",
		Certificate:     keys.Certificate,
		PublicKey:       keys.PublicKey,
		PrivateKey:      keys.PrivateKey,
		FiscalDayStatus: status,
		LastFiscalDayNo: lastDayNo,
		OperatingMode:   devicedomain.OperatingModeOnline,
		CreatedAt:       e.clock.Now(),
		UpdatedAt:       e.clock.Now(),
	}
	if status != devicedomain.FiscalDayClosed {
		opened := e.clock.Now()
		dev.FiscalDayOpenedAt = &opened
	}
	require.NoError(t, e.db.Create(dev).Error)
	return dev
}

func (e *testEnv) reloadDevice(t *testing.T, deviceID int64) *devicedomain.Device {
	t.Helper()
	var dev devicedomain.Device
	require.NoError(t, e.db.First(&dev, "device_id = ?", deviceID).Error)
	return &dev
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestOpenFiscalDay(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedDevice(t, 321, 5, devicedomain.FiscalDayClosed)
	seeded.LastReceiptCounter = 42
	seeded.PreviousReceiptHash = "stale-hash"
	require.NoError(t, env.db.Save(seeded).Error)

	resp, err := env.svc.OpenFiscalDay(context.Background(), 321)
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.FiscalDayNo)
	assert.Equal(t, devicedomain.FiscalDayOpened, resp.FiscalDayStatus)

	dev := env.reloadDevice(t, 321)
	assert.Equal(t, devicedomain.FiscalDayOpened, dev.FiscalDayStatus)
	// The committed day number moves only on close.
	assert.Equal(t, int64(5), dev.LastFiscalDayNo)
	require.NotNil(t, dev.FiscalDayOpenedAt)
	// Opening a day starts a fresh per-day receipt sequence and hash chain.
	assert.Zero(t, dev.LastReceiptCounter)
	assert.Empty(t, dev.PreviousReceiptHash)

	_, err = env.svc.OpenFiscalDay(context.Background(), 321)
	assert.ErrorIs(t, err, fiscaldomain.ErrInvalidTransition)
}

func TestCloseFiscalDayCommits(t *testing.T) {
	env := newTestEnv(t)
	dev := env.seedDevice(t, 321, 5, devicedomain.FiscalDayOpened)

	counters := []fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "USD", TaxPercent: pct("15"), MoneyType: "Cash", Value: amt("120.00"), TaxAmountValue: pct("18.00")},
	}
	require.NoError(t, env.svc.RecordCounters(context.Background(), 321, 0, counters))

	resp, err := env.svc.CloseFiscalDay(context.Background(), 321)
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.FiscalDayNo)
	assert.Equal(t, devicedomain.FiscalDayClosed, resp.FiscalDayStatus)

	reloaded := env.reloadDevice(t, 321)
	assert.Equal(t, int64(6), reloaded.LastFiscalDayNo)
	assert.Equal(t, devicedomain.FiscalDayClosed, reloaded.FiscalDayStatus)
	assert.Nil(t, reloaded.FiscalDayOpenedAt)

	sigs, err := env.svc.ListDaySignatures(context.Background(), 321)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, int64(6), sigs[0].FiscalDayNo)

	// The payload must contain the canonical sale fragment and the hash
	// must be reproducible from the stored counters.
	stored, err := env.svc.GetFiscalCounters(context.Background(), 321, 6)
	require.NoError(t, err)
	sum, err := aggregate.Summarize(stored)
	require.NoError(t, err)
	payload := encode.DayPayload(321, 5, *dev.FiscalDayOpenedAt, sum)
	assert.Contains(t, payload, "SALEBYTAXUSD15.0012000")
	assert.Equal(t, sign.Hash(payload), sigs[0].Hash)

	// And the signature must verify against the device public key.
	verifySignature(t, dev.PublicKey, payload, sigs[0].Signature)
}

func TestCloseFiscalDayRejectsClosedDay(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 55, 3, devicedomain.FiscalDayClosed)

	_, err := env.svc.CloseFiscalDay(context.Background(), 55)
	assert.ErrorIs(t, err, fiscaldomain.ErrInvalidTransition)

	dev := env.reloadDevice(t, 55)
	assert.Equal(t, int64(3), dev.LastFiscalDayNo)
	assert.Equal(t, devicedomain.FiscalDayClosed, dev.FiscalDayStatus)
}

func TestCloseFiscalDayFailureThenRetry(t *testing.T) {
	env := newTestEnv(t)
	dev := env.seedDevice(t, 88, 2, devicedomain.FiscalDayOpened)

	require.NoError(t, env.svc.RecordCounters(context.Background(), 88, 0, []fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "ZWG", TaxPercent: pct("15"), Value: amt("300.00"), TaxAmountValue: pct("45.00")},
	}))

	// Corrupt the key so signing fails.
	goodKey := dev.PrivateKey
	require.NoError(t, env.db.Model(&devicedomain.Device{}).
		Where("device_id = ?", int64(88)).
		Update("private_key", "not a pem").Error)

	_, err := env.svc.CloseFiscalDay(context.Background(), 88)
	require.Error(t, err)

	failed := env.reloadDevice(t, 88)
	assert.Equal(t, devicedomain.FiscalDayCloseFailed, failed.FiscalDayStatus)
	assert.Equal(t, int64(2), failed.LastFiscalDayNo)

	// Restore the key: the retry closes the same day over the same counters.
	require.NoError(t, env.db.Model(&devicedomain.Device{}).
		Where("device_id = ?", int64(88)).
		Update("private_key", goodKey).Error)

	resp, err := env.svc.CloseFiscalDay(context.Background(), 88)
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.FiscalDayNo)

	sigs, err := env.svc.ListDaySignatures(context.Background(), 88)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	stored, err := env.svc.GetFiscalCounters(context.Background(), 88, 3)
	require.NoError(t, err)
	sum, err := aggregate.Summarize(stored)
	require.NoError(t, err)
	payload := encode.DayPayload(88, 2, *dev.FiscalDayOpenedAt, sum)
	assert.Equal(t, sign.Hash(payload), sigs[0].Hash)
}

func TestCloseFiscalDayLockContention(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 99, 1, devicedomain.FiscalDayOpened)

	_, ok, err := env.locker.TryLock(context.Background(), "fiscal:day:99", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.svc.CloseFiscalDay(context.Background(), 99)
	assert.ErrorIs(t, err, fiscaldomain.ErrConcurrentTransition)

	dev := env.reloadDevice(t, 99)
	assert.Equal(t, devicedomain.FiscalDayOpened, dev.FiscalDayStatus)
	assert.Equal(t, int64(1), dev.LastFiscalDayNo)
}

func TestRecordCountersValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 7, 0, devicedomain.FiscalDayOpened)

	err := env.svc.RecordCounters(context.Background(), 7, 0, []fiscaldomain.Counter{
		{Type: "Bogus", Currency: "USD", Value: amt("1.00")},
	})
	assert.ErrorIs(t, err, fiscaldomain.ErrUnknownCounterType)

	err = env.svc.RecordCounters(context.Background(), 7, 0, []fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "", Value: amt("1.00")},
	})
	assert.ErrorIs(t, err, fiscaldomain.ErrInvalidCounter)

	err = env.svc.RecordCounters(context.Background(), 404, 0, nil)
	assert.ErrorIs(t, err, fiscaldomain.ErrDeviceNotFound)
}

func TestRecordCountersRequiresOpenDay(t *testing.T) {
	env := newTestEnv(t)
	env.seedDevice(t, 12, 4, devicedomain.FiscalDayClosed)

	err := env.svc.RecordCounters(context.Background(), 12, 0, []fiscaldomain.Counter{
		{Type: fiscaldomain.CounterSaleByTax, Currency: "USD", Value: amt("10.00")},
	})
	assert.ErrorIs(t, err, fiscaldomain.ErrInvalidTransition)
}

func pct(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func verifySignature(t *testing.T, publicKeyPEM, payload, signature string) {
	t.Helper()

	block, _ := pem.Decode([]byte(publicKeyPEM))
	require.NotNil(t, block)

	var pub *rsa.PublicKey
	if parsed, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		pub = parsed
	} else {
		parsedAny, err := x509.ParsePKIXPublicKey(block.Bytes)
		require.NoError(t, err)
		var ok bool
		pub, ok = parsedAny.(*rsa.PublicKey)
		require.True(t, ok)
	}

	raw, err := base64.StdEncoding.DecodeString(signature)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte(payload))
	require.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], raw))

	// Sanity: payload is a single line with no separators.
	assert.False(t, strings.ContainsAny(payload, "\n\t "))
}
