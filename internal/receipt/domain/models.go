// Package domain contains the receipt model and submission contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Type of a submitted receipt.
type Type string

const (
	TypeFiscalInvoice Type = "FiscalInvoice"
	TypeCreditNote    Type = "CreditNote"
	TypeDebitNote     Type = "DebitNote"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFiscalInvoice, TypeCreditNote, TypeDebitNote:
		return true
	}
	return false
}

// Line is one item row on a receipt.
type Line struct {
	LineType   string           `json:"line_type,omitempty"`
	LineNo     int              `json:"line_no"`
	HSCode     string           `json:"hs_code,omitempty"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Total      decimal.Decimal  `json:"total"`
	TaxCode    string           `json:"tax_code,omitempty"`
	TaxPercent *decimal.Decimal `json:"tax_percent,omitempty"`
	TaxID      *int64           `json:"tax_id,omitempty"`
}

// TaxSummary is one tax bracket total on a receipt.
type TaxSummary struct {
	TaxCode            string           `json:"tax_code,omitempty"`
	TaxID              *int64           `json:"tax_id,omitempty"`
	TaxPercent         *decimal.Decimal `json:"tax_percent,omitempty"`
	TaxAmount          decimal.Decimal  `json:"tax_amount"`
	SalesAmountWithTax decimal.Decimal  `json:"sales_amount_with_tax"`
}

// Payment is one tender entry on a receipt.
type Payment struct {
	MoneyTypeCode string          `json:"money_type_code"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreditNoteRef points a credit or debit note at the receipt it amends.
type CreditNoteRef struct {
	ReceiptID       string `json:"receipt_id,omitempty"`
	ReceiptGlobalNo int64  `json:"receipt_global_no,omitempty"`
	FiscalDayNo     int64  `json:"fiscal_day_no,omitempty"`
}

// Receipt is a fiscalized sales document. receipt_counter numbers receipts
// within a fiscal day, receipt_global_no never resets. The previous_hash
// chain links every receipt to the one before it on the same device.
type Receipt struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TaxpayerID snowflake.ID `gorm:"column:taxpayer_id;not null;index" json:"taxpayer_id"`
	DeviceID   int64        `gorm:"column:device_id;not null;index" json:"device_id"`

	Type     Type   `gorm:"column:receipt_type;type:text;not null" json:"receipt_type"`
	Currency string `gorm:"type:text;not null" json:"currency"`

	Counter     int64 `gorm:"column:receipt_counter;not null" json:"receipt_counter"`
	GlobalNo    int64 `gorm:"column:receipt_global_no;not null" json:"receipt_global_no"`
	FiscalDayNo int64 `gorm:"column:fiscal_day_no;not null;index" json:"fiscal_day_no"`

	InvoiceNo string `gorm:"column:invoice_no;type:text;not null;index" json:"invoice_no"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	BuyerData datatypes.JSON `gorm:"column:buyer_data;type:jsonb" json:"buyer_data,omitempty"`

	Date              time.Time      `gorm:"column:receipt_date;not null" json:"receipt_date"`
	LinesTaxInclusive bool           `gorm:"column:lines_tax_inclusive;not null;default:true" json:"lines_tax_inclusive"`
	Lines             datatypes.JSON `gorm:"type:jsonb;not null" json:"lines"`
	Taxes             datatypes.JSON `gorm:"type:jsonb;not null" json:"taxes"`
	Payments          datatypes.JSON `gorm:"type:jsonb" json:"payments,omitempty"`

	Total decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total"`

	Hash         string `gorm:"type:text;not null" json:"hash"`
	Signature    string `gorm:"type:text;not null" json:"signature"`
	PreviousHash string `gorm:"column:previous_hash;type:text" json:"previous_hash,omitempty"`

	CreditDebitNote datatypes.JSON `gorm:"column:credit_debit_note;type:jsonb" json:"credit_debit_note,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Receipt) TableName() string { return "receipts" }
