package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type ListRequest struct {
	TIN    string `form:"tin"`
	Name   string `form:"name"`
	Status string `form:"status"`
}

type Repository interface {
	Create(ctx context.Context, t *Taxpayer) error
	FindByID(ctx context.Context, id snowflake.ID) (*Taxpayer, error)
	FindByTIN(ctx context.Context, tin string) (*Taxpayer, error)
	List(ctx context.Context, filter ListRequest) ([]Taxpayer, error)
	Update(ctx context.Context, t *Taxpayer) error
}
