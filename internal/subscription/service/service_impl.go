package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/fiscalware/fiscalway/internal/clock"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// nextBillingLead is how far before period end the next billing date lands.
const nextBillingLead = 7 * 24 * time.Hour

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subscriptiondomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  subscriptiondomain.Repository
}

func NewService(p serviceParams) subscriptiondomain.Service {
	return &Service{
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateRequest) (*subscriptiondomain.Subscription, error) {
	taxpayerID, err := snowflake.ParseString(strings.TrimSpace(req.TaxpayerID))
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidTaxpayer
	}

	plan := subscriptiondomain.PlanType(strings.ToLower(strings.TrimSpace(req.PlanType)))
	if !plan.Valid() {
		return nil, subscriptiondomain.ErrInvalidPlan
	}

	existing, err := s.repo.FindActiveByTaxpayer(ctx, taxpayerID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Expired(s.clock.Now()) {
		return nil, subscriptiondomain.ErrActiveSubscription
	}

	now := s.clock.Now()
	record := &subscriptiondomain.Subscription{
		ID:         s.genID.Generate(),
		TaxpayerID: taxpayerID,
		PlanType:   plan,
		StartsAt:   now,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if plan == subscriptiondomain.PlanTrial {
		record.Amount = decimal.Zero
		record.EndsAt = now.Add(plan.Duration())
	} else {
		if req.Amount == nil || req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, subscriptiondomain.ErrPaymentRequired
		}
		record.Amount = *req.Amount
		record.PaidAt = &now
		record.EndsAt = now.Add(plan.Duration())

		nextBilling := record.EndsAt.Add(-nextBillingLead)
		record.NextBillingDate = &nextBilling

		if req.PaymentMethod != nil {
			method := subscriptiondomain.PaymentMethod(strings.ToLower(strings.TrimSpace(*req.PaymentMethod)))
			record.PaymentMethod = &method
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("subscription created",
		zap.String("subscription_id", record.ID.String()),
		zap.String("taxpayer_id", record.TaxpayerID.String()),
		zap.String("plan_type", string(record.PlanType)),
		zap.Time("ends_at", record.EndsAt),
	)
	return record, nil
}

func (s *Service) Get(ctx context.Context, id string) (*subscriptiondomain.Subscription, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, subscriptiondomain.ErrNotFound
	}

	record, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, subscriptiondomain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListByTaxpayer(ctx context.Context, taxpayerID string) ([]subscriptiondomain.Subscription, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(taxpayerID))
	if err != nil {
		return nil, subscriptiondomain.ErrInvalidTaxpayer
	}
	return s.repo.ListByTaxpayer(ctx, parsed)
}

func (s *Service) Cancel(ctx context.Context, req subscriptiondomain.CancelRequest) (*subscriptiondomain.Subscription, error) {
	record, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !record.IsActive {
		return nil, subscriptiondomain.ErrAlreadyInactive
	}

	record.IsActive = false
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		record.CancellationReason = &reason
	}
	record.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("subscription cancelled",
		zap.String("subscription_id", record.ID.String()),
	)
	return record, nil
}

func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	expired, err := s.repo.DeactivateExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Info("expired subscriptions deactivated", zap.Int64("count", expired))
	}
	return expired, nil
}
