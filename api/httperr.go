package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/receipt"
	"github.com/solo-knight-dev/fyllo-ai/svc/subscription"
)

// Status tags of the callable error convention.
const (
	statusUnauthenticated   = "unauthenticated"
	statusInvalidArgument   = "invalid-argument"
	statusResourceExhausted = "resource-exhausted"
	statusAlreadyExists     = "already-exists"
	statusNotFound          = "not-found"
	statusInternal          = "internal"
)

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, status, message string) {
	writeJSON(w, code, errorBody{Error: errorDetail{Status: status, Message: message}})
}

// writeServiceError maps domain sentinels onto HTTP codes and callable status
// tags. Anything unrecognized is an internal error with a generic message so
// infrastructure details never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, receipt.ErrNoCredits):
		writeError(w, http.StatusTooManyRequests, statusResourceExhausted,
			"Insufficient AI Credits. Please upgrade.")
	case errors.Is(err, receipt.ErrTextTooShort):
		writeError(w, http.StatusBadRequest, statusInvalidArgument,
			"OCR failed or empty text.")
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, statusNotFound, "User not found.")
	case errors.Is(err, store.ErrUserExists):
		writeError(w, http.StatusConflict, statusAlreadyExists, "User already exists.")
	case errors.Is(err, receipt.ErrAnalysisFailed):
		writeError(w, http.StatusInternalServerError, statusInternal, "AI Analysis Failed.")
	case errors.Is(err, subscription.ErrSyncFailed):
		writeError(w, http.StatusInternalServerError, statusInternal,
			"Failed to sync subscription.")
	default:
		writeError(w, http.StatusInternalServerError, statusInternal, "Internal error.")
	}
}
