package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"github.com/fiscalware/fiscalway/internal/taxpayer/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&taxpayerdomain.Taxpayer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)),
		repo:  repository.NewRepository(db),
	}
}

func validCreateRequest() taxpayerdomain.CreateRequest {
	return taxpayerdomain.CreateRequest{
		TIN:      "1234567890",
		Name:     "Acme Trading Ltd",
		Province: "Harare",
		City:     "Harare",
		Street:   "Samora Machel Ave",
		HouseNo:  "14",
	}
}

func TestCreateTaxpayer(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "1234567890", created.TIN)
	assert.Equal(t, taxpayerdomain.StatusActive, created.Status)

	got, err := svc.Get(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateTaxpayerValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := validCreateRequest()
	req.TIN = "123"
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, taxpayerdomain.ErrInvalidTIN)

	req = validCreateRequest()
	req.Name = "  "
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, taxpayerdomain.ErrInvalidName)

	req = validCreateRequest()
	req.Street = ""
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, taxpayerdomain.ErrInvalidAddress)
}

func TestCreateTaxpayerRejectsDuplicateTIN(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Name = "Another Name"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, taxpayerdomain.ErrTINExists)
}

func TestUpdateTaxpayer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	name := "Acme Holdings"
	status := "inactive"
	updated, err := svc.Update(ctx, taxpayerdomain.UpdateRequest{
		ID:     created.ID.String(),
		Name:   &name,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.Name)
	assert.Equal(t, taxpayerdomain.StatusInactive, updated.Status)
}

func TestGetTaxpayerErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-a-number")
	assert.ErrorIs(t, err, taxpayerdomain.ErrInvalidID)

	_, err = svc.Get(ctx, "123456789")
	assert.ErrorIs(t, err, taxpayerdomain.ErrNotFound)
}

func TestListTaxpayersFiltersByStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	second := validCreateRequest()
	second.TIN = "0987654321"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	status := "inactive"
	_, err = svc.Update(ctx, taxpayerdomain.UpdateRequest{ID: first.ID.String(), Status: &status})
	require.NoError(t, err)

	active, err := svc.List(ctx, taxpayerdomain.ListRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "0987654321", active[0].TIN)
}
