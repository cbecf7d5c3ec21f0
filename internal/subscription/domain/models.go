package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PlanType of a subscription.
type PlanType string

const (
	PlanTrial     PlanType = "trial"
	PlanMonthly   PlanType = "monthly"
	PlanQuarterly PlanType = "quarterly"
	PlanYearly    PlanType = "yearly"
)

func (p PlanType) Valid() bool {
	switch p {
	case PlanTrial, PlanMonthly, PlanQuarterly, PlanYearly:
		return true
	}
	return false
}

// Duration is the billing period covered by one payment of the plan.
// Trials are fixed at 14 days.
func (p PlanType) Duration() time.Duration {
	switch p {
	case PlanTrial:
		return 14 * 24 * time.Hour
	case PlanMonthly:
		return 30 * 24 * time.Hour
	case PlanQuarterly:
		return 90 * 24 * time.Hour
	case PlanYearly:
		return 365 * 24 * time.Hour
	}
	return 0
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentPaypal       PaymentMethod = "paypal"
)

// Subscription records a taxpayer's access period.
type Subscription struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TaxpayerID snowflake.ID `gorm:"column:taxpayer_id;not null;index" json:"taxpayer_id"`

	PlanType PlanType `gorm:"column:plan_type;type:text;not null" json:"plan_type"`

	PaidAt   *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	StartsAt time.Time  `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt   time.Time  `gorm:"column:ends_at;not null;index" json:"ends_at"`

	IsActive bool `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentMethod *PaymentMethod  `gorm:"column:payment_method;type:text" json:"payment_method,omitempty"`

	TrialConverted     bool       `gorm:"column:trial_converted;not null;default:false" json:"trial_converted"`
	RenewalCount       int        `gorm:"column:renewal_count;not null;default:0" json:"renewal_count"`
	NextBillingDate    *time.Time `gorm:"column:next_billing_date" json:"next_billing_date,omitempty"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Expired reports whether the subscription period has passed at ref.
func (s *Subscription) Expired(ref time.Time) bool {
	return s.EndsAt.Before(ref)
}

// DaysRemaining counts whole days left until the period end, rounding up.
func (s *Subscription) DaysRemaining(ref time.Time) int {
	remaining := s.EndsAt.Sub(ref)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}
