// Package domain contains persistence models for registered fiscal devices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// FiscalDayStatus represents the lifecycle state of a device's fiscal day.
type FiscalDayStatus string

const (
	FiscalDayOpened      FiscalDayStatus = "FiscalDayOpened"
	FiscalDayClosed      FiscalDayStatus = "FiscalDayClosed"
	FiscalDayCloseFailed FiscalDayStatus = "FiscalDayCloseFailed"
)

// OperatingMode distinguishes devices that report live from batch uploaders.
type OperatingMode string

const (
	OperatingModeOnline  OperatingMode = "ONLINE"
	OperatingModeOffline OperatingMode = "OFFLINE"
)

// ApplicableTax is one tax bracket a device may apply to receipt lines.
type ApplicableTax struct {
	TaxID      int64    `json:"tax_id"`
	TaxCode    string   `json:"tax_code"`
	TaxPercent *float64 `json:"tax_percent,omitempty"`
	TaxName    string   `json:"tax_name"`
}

// Device is a registered fiscal device.
//
// fiscal_day_status and last_fiscal_day_no change only through the fiscal
// day state machine; last_fiscal_day_no is committed only on a successful
// close. last_receipt_counter resets per day, last_receipt_global_no never
// resets for the lifetime of the device.
type Device struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TaxpayerID    snowflake.ID `gorm:"column:taxpayer_id;not null;index" json:"taxpayer_id"`
	DeviceID      int64        `gorm:"column:device_id;not null;uniqueIndex" json:"device_id"`
	SerialNo      string       `gorm:"column:serial_no;type:text;not null" json:"serial_no"`
	ActivationKey string       `gorm:"column:activation_key;type:text;not null" json:"-"`
	Version       string       `gorm:"type:text;not null" json:"version"`

	Certificate string `gorm:"type:text" json:"certificate,omitempty"`
	PublicKey   string `gorm:"column:public_key;type:text" json:"public_key,omitempty"`
	PrivateKey  string `gorm:"column:private_key;type:text" json:"-"`

	FiscalDayStatus     FiscalDayStatus `gorm:"column:fiscal_day_status;type:text;not null;default:'FiscalDayClosed'" json:"fiscal_day_status"`
	LastFiscalDayNo     int64           `gorm:"column:last_fiscal_day_no;not null;default:0" json:"last_fiscal_day_no"`
	LastReceiptCounter  int64           `gorm:"column:last_receipt_counter;not null;default:0" json:"last_receipt_counter"`
	LastReceiptGlobalNo int64           `gorm:"column:last_receipt_global_no;not null;default:0" json:"last_receipt_global_no"`
	PreviousReceiptHash string          `gorm:"column:previous_receipt_hash;type:text" json:"previous_receipt_hash,omitempty"`
	FiscalDayOpenedAt   *time.Time      `gorm:"column:fiscal_day_opened_at" json:"fiscal_day_opened_at,omitempty"`

	OperatingMode   OperatingMode  `gorm:"column:operating_mode;type:text;not null;default:'ONLINE'" json:"operating_mode"`
	VATNumber       string         `gorm:"column:vat_number;type:text" json:"vat_number,omitempty"`
	ApplicableTaxes datatypes.JSON `gorm:"column:applicable_taxes;type:jsonb" json:"applicable_taxes,omitempty"`

	CertificateValidTill *time.Time `gorm:"column:certificate_valid_till" json:"certificate_valid_till,omitempty"`
	CreatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Device) TableName() string { return "devices" }
