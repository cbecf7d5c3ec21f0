package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	subdomaindomain "github.com/fiscalware/fiscalway/internal/subdomain/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) subdomaindomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *subdomaindomain.Subdomain) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByName(ctx context.Context, name string) (*subdomaindomain.Subdomain, error) {
	var s subdomaindomain.Subdomain
	err := r.db.WithContext(ctx).First(&s, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByTaxpayer(ctx context.Context, taxpayerID snowflake.ID) ([]subdomaindomain.Subdomain, error) {
	var items []subdomaindomain.Subdomain
	err := r.db.WithContext(ctx).
		Where("taxpayer_id = ?", taxpayerID).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Delete(&subdomaindomain.Subdomain{}, "id = ?", id).Error
}
