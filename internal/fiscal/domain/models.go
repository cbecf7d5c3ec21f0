// Package domain contains the fiscal counter model, the day-close artifacts
// and the ports the closing engine depends on.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CounterType classifies a fiscal counter contribution.
type CounterType string

const (
	CounterSaleByTax          CounterType = "SaleByTax"
	CounterSaleTaxByTax       CounterType = "SaleTaxByTax"
	CounterCreditNoteByTax    CounterType = "CreditNoteByTax"
	CounterCreditNoteTaxByTax CounterType = "CreditNoteTaxByTax"
	CounterBalanceByMoneyType CounterType = "BalanceByMoneyType"
)

// Valid reports whether t is one of the recognized counter types.
func (t CounterType) Valid() bool {
	switch t {
	case CounterSaleByTax,
		CounterSaleTaxByTax,
		CounterCreditNoteByTax,
		CounterCreditNoteTaxByTax,
		CounterBalanceByMoneyType:
		return true
	default:
		return false
	}
}

// Counter is one append-only contribution to a device's fiscal day totals.
// Counters are immutable once written; the value is always recorded positive,
// the credit-note sign convention is applied during aggregation.
type Counter struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	DeviceID    int64        `gorm:"column:device_id;not null;index:idx_fiscal_counters_device_day" json:"device_id"`
	FiscalDayNo int64        `gorm:"column:fiscal_day_no;not null;index:idx_fiscal_counters_device_day" json:"fiscal_day_no"`

	Type     CounterType `gorm:"column:counter_type;type:text;not null" json:"counter_type"`
	Currency string      `gorm:"type:text;not null" json:"currency"`

	// TaxPercent is nil for tax-exempt sales.
	TaxPercent *decimal.Decimal `gorm:"column:tax_percent;type:numeric(6,2)" json:"tax_percent,omitempty"`
	TaxID      *int64           `gorm:"column:tax_id" json:"tax_id,omitempty"`

	// MoneyType is set on counters that contribute to balance totals.
	MoneyType string `gorm:"column:money_type;type:text" json:"money_type,omitempty"`

	Value          decimal.Decimal  `gorm:"type:numeric(18,2);not null" json:"value"`
	TaxAmountValue *decimal.Decimal `gorm:"column:tax_amount_value;type:numeric(18,2)" json:"tax_amount_value,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "fiscal_counters" }

// DaySignature is the immutable artifact of a successful fiscal day close.
type DaySignature struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	DeviceID    int64        `gorm:"column:device_id;not null;index:idx_fiscal_day_signatures_device_day" json:"device_id"`
	FiscalDayNo int64        `gorm:"column:fiscal_day_no;not null;index:idx_fiscal_day_signatures_device_day" json:"fiscal_day_no"`
	Hash        string       `gorm:"type:text;not null" json:"hash"`
	Signature   string       `gorm:"type:text;not null" json:"signature"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (DaySignature) TableName() string { return "fiscal_day_signatures" }
