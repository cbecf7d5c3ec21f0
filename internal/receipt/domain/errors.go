package domain

import "errors"

var (
	ErrNotFound        = errors.New("receipt_not_found")
	ErrDeviceNotFound  = errors.New("device_not_found")
	ErrDayNotOpen      = errors.New("fiscal_day_not_open")
	ErrInvalidType     = errors.New("invalid_receipt_type")
	ErrInvalidCurrency = errors.New("invalid_receipt_currency")
	ErrInvalidInvoice  = errors.New("invalid_invoice_no")
	ErrNoLines         = errors.New("receipt_has_no_lines")
	ErrInvalidTotal    = errors.New("invalid_receipt_total")
	ErrInvalidTaxpayer = errors.New("invalid_taxpayer")
	ErrSigning         = errors.New("receipt_signing_failed")
)
