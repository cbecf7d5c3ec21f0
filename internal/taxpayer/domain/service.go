package domain

import "context"

type CreateRequest struct {
	TIN       string  `json:"tin" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	VATNumber *string `json:"vat_number"`
	Province  string  `json:"province" binding:"required"`
	City      string  `json:"city" binding:"required"`
	Street    string  `json:"street" binding:"required"`
	HouseNo   string  `json:"house_no" binding:"required"`
	PhoneNo   *string `json:"phone_no"`
	Email     *string `json:"email"`
}

type UpdateRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name"`
	VATNumber *string `json:"vat_number"`
	Province  *string `json:"province"`
	City      *string `json:"city"`
	Street    *string `json:"street"`
	HouseNo   *string `json:"house_no"`
	PhoneNo   *string `json:"phone_no"`
	Email     *string `json:"email"`
	Status    *string `json:"status"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Taxpayer, error)
	Get(ctx context.Context, id string) (*Taxpayer, error)
	List(ctx context.Context, filter ListRequest) ([]Taxpayer, error)
	Update(ctx context.Context, req UpdateRequest) (*Taxpayer, error)
}
