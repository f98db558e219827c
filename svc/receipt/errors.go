package receipt

import "errors"

var (
	ErrNoCredits      = errors.New("receipt.errors.insufficient_credits")
	ErrTextTooShort   = errors.New("receipt.errors.text_too_short")
	ErrAnalysisFailed = errors.New("receipt.errors.analysis_failed")
)
