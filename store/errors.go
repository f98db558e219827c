package store

import "errors"

var (
	ErrUserNotFound = errors.New("store.errors.user_not_found")
	ErrUserExists   = errors.New("store.errors.user_already_exists")
	ErrNoCredits    = errors.New("store.errors.insufficient_credits")
	ErrWriteFailed  = errors.New("store.errors.write_failed")
	ErrReadFailed   = errors.New("store.errors.read_failed")
)
