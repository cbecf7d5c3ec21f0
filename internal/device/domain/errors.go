package domain

import "errors"

var (
	ErrNotFound         = errors.New("device_not_found")
	ErrInvalidTaxpayer  = errors.New("invalid_taxpayer")
	ErrInvalidSerialNo  = errors.New("invalid_serial_no")
	ErrInvalidDeviceID  = errors.New("invalid_device_id")
	ErrDeviceExists     = errors.New("device_exists")
	ErrKeyGeneration    = errors.New("key_generation_failed")
	ErrInvalidActivation = errors.New("invalid_activation_key")
)
