package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"github.com/fiscalware/fiscalway/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  taxpayerdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  taxpayerdomain.Repository
}

func NewService(p serviceParams) taxpayerdomain.Service {
	return &Service{
		log:   p.Log.Named("taxpayer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req taxpayerdomain.CreateRequest) (*taxpayerdomain.Taxpayer, error) {
	now := s.clock.Now()
	record := &taxpayerdomain.Taxpayer{
		ID:        s.genID.Generate(),
		TIN:       strings.TrimSpace(req.TIN),
		Name:      strings.TrimSpace(req.Name),
		VATNumber: trimPtr(req.VATNumber),
		Province:  strings.TrimSpace(req.Province),
		City:      strings.TrimSpace(req.City),
		Street:    strings.TrimSpace(req.Street),
		HouseNo:   strings.TrimSpace(req.HouseNo),
		PhoneNo:   trimPtr(req.PhoneNo),
		Email:     trimPtr(req.Email),
		Status:    taxpayerdomain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, taxpayerdomain.ErrTINExists
		}
		return nil, err
	}

	s.log.Info("taxpayer registered",
		zap.String("taxpayer_id", record.ID.String()),
		zap.String("tin", record.TIN),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*taxpayerdomain.Taxpayer, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, taxpayerdomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, taxpayerdomain.ErrNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, filter taxpayerdomain.ListRequest) ([]taxpayerdomain.Taxpayer, error) {
	return s.repo.List(ctx, taxpayerdomain.ListRequest{
		TIN:    strings.TrimSpace(filter.TIN),
		Name:   strings.TrimSpace(filter.Name),
		Status: strings.TrimSpace(filter.Status),
	})
}

func (s *Service) Update(ctx context.Context, req taxpayerdomain.UpdateRequest) (*taxpayerdomain.Taxpayer, error) {
	record, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.VATNumber != nil {
		record.VATNumber = trimPtr(req.VATNumber)
	}
	if req.Province != nil {
		record.Province = strings.TrimSpace(*req.Province)
	}
	if req.City != nil {
		record.City = strings.TrimSpace(*req.City)
	}
	if req.Street != nil {
		record.Street = strings.TrimSpace(*req.Street)
	}
	if req.HouseNo != nil {
		record.HouseNo = strings.TrimSpace(*req.HouseNo)
	}
	if req.PhoneNo != nil {
		record.PhoneNo = trimPtr(req.PhoneNo)
	}
	if req.Email != nil {
		record.Email = trimPtr(req.Email)
	}
	if req.Status != nil {
		record.Status = taxpayerdomain.Status(strings.ToLower(strings.TrimSpace(*req.Status)))
	}

	record.UpdatedAt = s.clock.Now()
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
