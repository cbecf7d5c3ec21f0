// Package scheduler runs the periodic background jobs: currently the
// subscription expiry sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fiscalware/fiscalway/internal/clock"
	"github.com/fiscalware/fiscalway/internal/config"
	obsmetrics "github.com/fiscalware/fiscalway/internal/observability/metrics"
	subscriptiondomain "github.com/fiscalware/fiscalway/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobSubscriptionExpiry = "subscription_expiry"

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log             *zap.Logger
	Clock           clock.Clock
	FiscalCfg       *config.FiscalConfigHolder
	SubscriptionSvc subscriptiondomain.Service
}

type Scheduler struct {
	log             *zap.Logger
	clock           clock.Clock
	fiscalCfg       *config.FiscalConfigHolder
	subscriptionSvc subscriptiondomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.FiscalCfg == nil || p.SubscriptionSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:             p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:           p.Clock,
		fiscalCfg:       p.FiscalCfg,
		subscriptionSvc: p.SubscriptionSvc,
	}, nil
}

// RunOnce executes every job a single time.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runJob(ctx, jobSubscriptionExpiry, 30*time.Second, s.SubscriptionExpiryJob)
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	err := fn(ctx)

	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.ObserveRun(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		schedMetrics.ObserveError(name, "timeout")
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err))
		return nil
	}

	schedMetrics.ObserveError(name, "failed")
	return fmt.Errorf("%s: %w", name, err)
}

// SubscriptionExpiryJob deactivates every subscription whose period ended
// before the current sweep.
func (s *Scheduler) SubscriptionExpiryJob(ctx context.Context) error {
	swept, err := s.subscriptionSvc.ExpireDue(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		obsmetrics.Scheduler().ObserveSwept(jobSubscriptionExpiry, swept)
		s.log.Info("expired subscriptions swept", zap.Int64("count", swept))
	}
	return nil
}

// RunForever runs the jobs on the configured interval until ctx is
// canceled. The interval is re-read every cycle so a config hot-reload
// takes effect without a restart.
func (s *Scheduler) RunForever(ctx context.Context) {
	for {
		interval := s.fiscalCfg.Get().SubscriptionSweepInterval
		if interval <= 0 {
			interval = config.DefaultFiscalConfig().SubscriptionSweepInterval
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
	}
}
