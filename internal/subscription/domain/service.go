package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	TaxpayerID    string           `json:"taxpayer_id" binding:"required"`
	PlanType      string           `json:"plan_type" binding:"required"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method"`
}

type CancelRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Subscription, error)
	Get(ctx context.Context, id string) (*Subscription, error)
	ListByTaxpayer(ctx context.Context, taxpayerID string) ([]Subscription, error)
	Cancel(ctx context.Context, req CancelRequest) (*Subscription, error)

	// ExpireDue deactivates every subscription whose period has ended.
	// The scheduler calls this on an interval.
	ExpireDue(ctx context.Context) (int64, error)
}
