package domain

import "errors"

var (
	ErrNotFound           = errors.New("subscription_not_found")
	ErrInvalidTaxpayer    = errors.New("invalid_taxpayer")
	ErrInvalidPlan        = errors.New("invalid_plan_type")
	ErrPaymentRequired    = errors.New("payment_required_for_paid_plan")
	ErrAlreadyInactive    = errors.New("subscription_already_inactive")
	ErrActiveSubscription = errors.New("taxpayer_has_active_subscription")
)
