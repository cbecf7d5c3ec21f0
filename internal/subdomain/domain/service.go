package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name       string `json:"name" binding:"required"`
	TaxpayerID string `json:"taxpayer_id" binding:"required"`
}

type Repository interface {
	Create(ctx context.Context, s *Subdomain) error
	FindByName(ctx context.Context, name string) (*Subdomain, error)
	ListByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) ([]Subdomain, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Subdomain, error)
	Resolve(ctx context.Context, name string) (*Subdomain, error)
	ListByTaxpayer(ctx context.Context, taxpayerID string) ([]Subdomain, error)
	Delete(ctx context.Context, id string) error
}
