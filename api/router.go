package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solo-knight-dev/fyllo-ai/pkg/billing"
	"github.com/solo-knight-dev/fyllo-ai/pkg/identity"
	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/receipt"
	"github.com/solo-knight-dev/fyllo-ai/svc/subscription"
)

// Config holds the API surface configuration.
type Config struct {
	ReferralLinkBase string `env:"REFERRAL_LINK_BASE" envDefault:"https://fylloai.app/invite"`
}

// Provisioner runs the post-signup setup flow.
type Provisioner interface {
	HandleUserCreated(ctx context.Context, seed *store.User)
}

// Analyzer runs the receipt analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, uid, rawText string) (*receipt.Result, error)
}

// Reconciler applies billing state.
type Reconciler interface {
	HandleWebhook(ctx context.Context, event billing.WebhookEvent) (*subscription.WebhookResult, error)
	SyncNow(ctx context.Context, uid string) (*subscription.SyncResult, error)
}

// UserCreator inserts the signup seed document.
type UserCreator interface {
	Create(ctx context.Context, u *store.User) error
}

// Healthcheck probes one dependency.
type Healthcheck func(ctx context.Context) error

// Handler wires the HTTP routes to the services.
type Handler struct {
	cfg          Config
	users        UserCreator
	provisioner  Provisioner
	analyzer     Analyzer
	reconciler   Reconciler
	verifier     identity.TokenVerifier
	healthchecks map[string]Healthcheck
	logger       *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	cfg Config,
	users UserCreator,
	provisioner Provisioner,
	analyzer Analyzer,
	reconciler Reconciler,
	verifier identity.TokenVerifier,
	healthchecks map[string]Healthcheck,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:          cfg,
		users:        users,
		provisioner:  provisioner,
		analyzer:     analyzer,
		reconciler:   reconciler,
		verifier:     verifier,
		healthchecks: healthchecks,
		logger:       logger,
	}
}

// Router assembles the route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Post("/webhooks/revenuecat", h.handleWebhook)

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(h.verifier))
		r.Post("/users", h.handleSignup)
		r.Post("/receipts/analyze", h.handleAnalyze)
		r.Post("/subscription/sync", h.handleSync)
		r.Get("/referrals/qrcode", h.handleReferralQR)
	})

	return r
}
