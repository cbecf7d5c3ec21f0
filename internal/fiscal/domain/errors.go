package domain

import "errors"

// The close engine distinguishes errors that leave the device untouched
// (validation, invalid transition, concurrency) from errors that move it to
// FiscalDayCloseFailed (aggregation, signing). The HTTP layer relies on this
// split when telling callers whether a plain retry is safe.
var (
	ErrDeviceNotFound       = errors.New("device_not_found")
	ErrInvalidTransition    = errors.New("invalid_day_transition")
	ErrUnknownCounterType   = errors.New("unknown_counter_type")
	ErrInvalidCounter       = errors.New("invalid_counter")
	ErrAggregation          = errors.New("aggregation_failed")
	ErrSigning              = errors.New("signing_failed")
	ErrMissingPrivateKey    = errors.New("device_private_key_missing")
	ErrConcurrentTransition = errors.New("concurrent_day_transition")
)
