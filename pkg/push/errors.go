package push

import "errors"

var (
	ErrInvalidConfig = errors.New("push.errors.invalid_config")
	ErrInvalidToken  = errors.New("push.errors.invalid_token")
	ErrSendFailed    = errors.New("push.errors.send_failed")
)
