package archive

import "errors"

var (
	ErrInvalidConfig = errors.New("archive.errors.invalid_config")
	ErrPutFailed     = errors.New("archive.errors.put_failed")
)
