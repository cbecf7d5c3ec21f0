package domain

import "errors"

var (
	ErrNotFound       = errors.New("taxpayer_not_found")
	ErrInvalidID      = errors.New("invalid_taxpayer_id")
	ErrInvalidTIN     = errors.New("invalid_tin")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidAddress = errors.New("invalid_address")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrTINExists      = errors.New("tin_already_registered")
)
