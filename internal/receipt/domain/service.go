package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/fiscalware/fiscalway/pkg/db/pagination"
)

// SubmitRequest carries one receipt for fiscalization.
type SubmitRequest struct {
	DeviceID int64       `json:"device_id" binding:"required"`
	Receipt  ReceiptData `json:"receipt" binding:"required"`
}

// ReceiptData is the caller-provided receipt body.
type ReceiptData struct {
	Type              Type             `json:"receipt_type"`
	Currency          string           `json:"currency"`
	InvoiceNo         string           `json:"invoice_no"`
	Notes             string           `json:"notes,omitempty"`
	BuyerData         json.RawMessage  `json:"buyer_data,omitempty"`
	Date              *time.Time       `json:"receipt_date,omitempty"`
	LinesTaxInclusive *bool            `json:"lines_tax_inclusive,omitempty"`
	Lines             []Line           `json:"lines"`
	Taxes             []TaxSummary     `json:"taxes"`
	Payments          []Payment        `json:"payments,omitempty"`
	Total             decimal.Decimal  `json:"total"`
	CreditDebitNote   *CreditNoteRef   `json:"credit_debit_note,omitempty"`
}

// SubmitResponse reports the fiscalization outcome.
type SubmitResponse struct {
	Receipt         *Receipt `json:"receipt"`
	ReceiptCounter  int64    `json:"receipt_counter"`
	ReceiptGlobalNo int64    `json:"receipt_global_no"`
	FiscalDayNo     int64    `json:"fiscal_day_no"`
	Hash            string   `json:"hash"`
	Signature       string   `json:"signature"`
}

// ListResponse wraps a receipt page.
type ListResponse struct {
	Receipts []*Receipt           `json:"receipts"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)
	Get(ctx context.Context, id string) (*Receipt, error)
	ListByDevice(ctx context.Context, deviceID int64, limit int) ([]Receipt, error)
	ListByTaxpayer(ctx context.Context, taxpayerID, search string, page pagination.Pagination) (*ListResponse, error)
}
