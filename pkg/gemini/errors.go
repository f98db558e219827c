package gemini

import "errors"

var (
	ErrInvalidConfig    = errors.New("gemini.errors.invalid_config")
	ErrCompletionFailed = errors.New("gemini.errors.completion_failed")
	ErrEmptyResponse    = errors.New("gemini.errors.empty_response")
)
