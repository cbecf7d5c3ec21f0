package domain

import (
	"context"
	"time"
)

type RegisterRequest struct {
	TaxpayerID    string          `json:"taxpayer_id"`
	DeviceID      int64           `json:"device_id"`
	SerialNo      string          `json:"serial_no"`
	ActivationKey string          `json:"activation_key"`
	Version       string          `json:"version"`
	VATNumber     string          `json:"vat_number"`
	Taxes         []ApplicableTax `json:"applicable_taxes"`
}

type UpdateConfigRequest struct {
	DeviceID  int64           `json:"-"`
	VATNumber *string         `json:"vat_number,omitempty"`
	Taxes     []ApplicableTax `json:"applicable_taxes,omitempty"`
}

type Response struct {
	ID                   string          `json:"id"`
	TaxpayerID           string          `json:"taxpayer_id"`
	DeviceID             int64           `json:"device_id"`
	SerialNo             string          `json:"serial_no"`
	Version              string          `json:"version"`
	Certificate          string          `json:"certificate,omitempty"`
	PublicKey            string          `json:"public_key,omitempty"`
	FiscalDayStatus      FiscalDayStatus `json:"fiscal_day_status"`
	LastFiscalDayNo      int64           `json:"last_fiscal_day_no"`
	LastReceiptGlobalNo  int64           `json:"last_receipt_global_no"`
	OperatingMode        OperatingMode   `json:"operating_mode"`
	VATNumber            string          `json:"vat_number,omitempty"`
	Taxes                []ApplicableTax `json:"applicable_taxes,omitempty"`
	CertificateValidTill *time.Time      `json:"certificate_valid_till,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Response, error)
	GetByDeviceID(ctx context.Context, deviceID int64) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	UpdateConfig(ctx context.Context, req UpdateConfigRequest) (*Response, error)
}
