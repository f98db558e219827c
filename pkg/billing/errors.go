package billing

import "errors"

var (
	ErrInvalidConfig  = errors.New("billing.errors.invalid_config")
	ErrRequestFailed  = errors.New("billing.errors.request_failed")
	ErrInvalidPayload = errors.New("billing.errors.invalid_payload")
)
