package subscription

import "errors"

var (
	ErrSyncFailed  = errors.New("subscription.errors.sync_failed")
	ErrApplyFailed = errors.New("subscription.errors.apply_failed")
)
