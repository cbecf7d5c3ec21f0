package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	taxpayerdomain "github.com/fiscalware/fiscalway/internal/taxpayer/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxpayerdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *taxpayerdomain.Taxpayer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*taxpayerdomain.Taxpayer, error) {
	var t taxpayerdomain.Taxpayer
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindByTIN(ctx context.Context, tin string) (*taxpayerdomain.Taxpayer, error) {
	var t taxpayerdomain.Taxpayer
	err := r.db.WithContext(ctx).First(&t, "tin = ?", tin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, filter taxpayerdomain.ListRequest) ([]taxpayerdomain.Taxpayer, error) {
	var items []taxpayerdomain.Taxpayer
	stmt := r.db.WithContext(ctx).Model(&taxpayerdomain.Taxpayer{})

	if filter.TIN != "" {
		stmt = stmt.Where("tin = ?", filter.TIN)
	}
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, t *taxpayerdomain.Taxpayer) error {
	return r.db.WithContext(ctx).
		Model(&taxpayerdomain.Taxpayer{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"name":       t.Name,
			"vat_number": t.VATNumber,
			"province":   t.Province,
			"city":       t.City,
			"street":     t.Street,
			"house_no":   t.HouseNo,
			"phone_no":   t.PhoneNo,
			"email":      t.Email,
			"status":     t.Status,
			"updated_at": t.UpdatedAt,
		}).Error
}
