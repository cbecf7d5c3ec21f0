package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	"github.com/fiscalware/fiscalway/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subdomaindomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  subdomaindomain.Repository
}

func NewService(p serviceParams) subdomaindomain.Service {
	return &Service{
		log:   p.Log.Named("subdomain.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req subdomaindomain.CreateRequest) (*subdomaindomain.Subdomain, error) {
	taxpayerID, err := snowflake.ParseString(strings.TrimSpace(req.TaxpayerID))
	if err != nil {
		return nil, subdomaindomain.ErrInvalidTaxpayer
	}

	now := s.clock.Now()
	record := &subdomaindomain.Subdomain{
		ID:         s.genID.Generate(),
		Name:       strings.ToLower(strings.TrimSpace(req.Name)),
		TaxpayerID: taxpayerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, subdomaindomain.ErrSubdomainTaken
		}
		return nil, err
	}

	s.log.Info("subdomain registered",
		zap.String("name", record.Name),
		zap.String("taxpayer_id", record.TaxpayerID.String()),
	)
	return record, nil
}

func (s *Service) Resolve(ctx context.Context, name string) (*subdomaindomain.Subdomain, error) {
	record, err := s.repo.FindByName(ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, subdomaindomain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListByTaxpayer(ctx context.Context, taxpayerID string) ([]subdomaindomain.Subdomain, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(taxpayerID))
	if err != nil {
		return nil, subdomaindomain.ErrInvalidTaxpayer
	}
	return s.repo.ListByTaxpayer(ctx, parsed)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return subdomaindomain.ErrNotFound
	}
	return s.repo.Delete(ctx, parsed)
}
