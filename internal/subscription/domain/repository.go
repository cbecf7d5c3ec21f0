package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	FindByID(ctx context.Context, id snowflake.ID) (*Subscription, error)
	FindActiveByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) (*Subscription, error)
	ListByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) ([]Subscription, error)
	Update(ctx context.Context, s *Subscription) error

	// DeactivateExpired flips is_active off for every subscription whose
	// period ended at or before ref, and returns how many rows changed.
	DeactivateExpired(ctx context.Context, ref time.Time) (int64, error)
}
