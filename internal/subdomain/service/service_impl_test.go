package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	"github.com/fiscalware/fiscalway/internal/subdomain/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&subdomaindomain.Subdomain{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)),
		repo:  repository.NewRepository(db),
	}
	return svc, node.Generate()
}

func TestCreateSubdomainNormalizesName(t *testing.T) {
	svc, taxpayerID := newTestService(t)

	created, err := svc.Create(context.Background(), subdomaindomain.CreateRequest{
		Name:       "  Acme-Store ",
		TaxpayerID: taxpayerID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-store", created.Name)

	resolved, err := svc.Resolve(context.Background(), "ACME-Store")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, taxpayerID, resolved.TaxpayerID)
}

func TestCreateSubdomainValidation(t *testing.T) {
	svc, taxpayerID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "acme store",
		TaxpayerID: taxpayerID.String(),
	})
	assert.ErrorIs(t, err, subdomaindomain.ErrInvalidSubdomain)

	_, err = svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "acme",
		TaxpayerID: "not-an-id",
	})
	assert.ErrorIs(t, err, subdomaindomain.ErrInvalidTaxpayer)
}

func TestCreateSubdomainRejectsTakenName(t *testing.T) {
	svc, taxpayerID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "acme",
		TaxpayerID: taxpayerID.String(),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "ACME",
		TaxpayerID: taxpayerID.String(),
	})
	assert.ErrorIs(t, err, subdomaindomain.ErrSubdomainTaken)
}

func TestResolveUnknownSubdomain(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, subdomaindomain.ErrNotFound)
}

func TestListAndDeleteSubdomains(t *testing.T) {
	svc, taxpayerID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "store-one",
		TaxpayerID: taxpayerID.String(),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, subdomaindomain.CreateRequest{
		Name:       "store-two",
		TaxpayerID: taxpayerID.String(),
	})
	require.NoError(t, err)

	all, err := svc.ListByTaxpayer(ctx, taxpayerID.String())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, first.ID.String()))

	remaining, err := svc.ListByTaxpayer(ctx, taxpayerID.String())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "store-two", remaining[0].Name)
}
