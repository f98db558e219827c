package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/solo-knight-dev/fyllo-ai/pkg/billing"
	"github.com/solo-knight-dev/fyllo-ai/pkg/qrcode"
	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/subscription"
)

const maxBodySize = 1 << 20 // 1 MiB

// handleWebhook processes billing provider deliveries. Every business
// outcome, including ignored events, answers 200 so the provider stops
// retrying; only malformed payloads and infrastructure failures differ.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "Invalid payload"})
		return
	}

	event, err := billing.ParseWebhook(body)
	if err != nil {
		h.logger.Error("invalid webhook payload", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "message": "Invalid payload"})
		return
	}

	result, err := h.reconciler.HandleWebhook(r.Context(), event)
	if err != nil {
		h.logger.Error("webhook processing failed",
			slog.String("uid", event.AppUserID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "processing failed"})
		return
	}

	if result.Outcome == subscription.OutcomeApplied {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"plan":    result.Plan.String(),
			"credits": result.Credits,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": result.Message})
}

type signupRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Photo         string `json:"photo"`
	ReferredBy    string `json:"referredBy"`
	Jurisdiction  string `json:"jurisdiction"`
	TaxBody       string `json:"taxBody"`
	WorkType      string `json:"workType"`
	FCMToken      string `json:"fcmToken"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// handleSignup inserts the seed profile and runs provisioning. Provisioning
// failures are logged inside the provisioner and never surface here.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, statusInvalidArgument, "Malformed request body.")
		return
	}

	seed := &store.User{
		ID:            uid,
		Email:         req.Email,
		Name:          req.Name,
		Photo:         req.Photo,
		ReferredBy:    req.ReferredBy,
		Jurisdiction:  req.Jurisdiction,
		TaxBody:       req.TaxBody,
		WorkType:      req.WorkType,
		FCMToken:      req.FCMToken,
		TermsAccepted: req.TermsAccepted,
	}

	if err := h.users.Create(r.Context(), seed); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeServiceError(w, err)
			return
		}
		h.logger.Error("signup insert failed",
			slog.String("uid", uid),
			slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}

	h.provisioner.HandleUserCreated(r.Context(), seed)

	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

type analyzeRequest struct {
	RawText string `json:"rawText"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, statusInvalidArgument, "Malformed request body.")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), uid, req.RawText)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
		return
	}

	result, err := h.reconciler.SyncNow(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"plan":         result.Plan.String(),
		"credits":      result.Credits,
		"previousPlan": result.PreviousPlan.String(),
		"message":      result.Message,
	})
}

// handleReferralQR renders the caller's referral link as a PNG QR code.
func (h *Handler) handleReferralQR(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, statusUnauthenticated, "Must be logged in")
		return
	}

	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		size, _ = strconv.Atoi(s)
	}

	link := h.cfg.ReferralLinkBase + "/" + uid
	png, err := qrcode.Generate(link, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, statusInternal, "QR generation failed.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.healthchecks))

	for name, check := range h.healthchecks {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
