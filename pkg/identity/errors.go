package identity

import "errors"

var (
	ErrInvalidConfig   = errors.New("identity.errors.invalid_config")
	ErrInvalidToken    = errors.New("identity.errors.invalid_token")
	ErrRequestFailed   = errors.New("identity.errors.request_failed")
	ErrUserNotResolved = errors.New("identity.errors.user_not_resolved")
)
