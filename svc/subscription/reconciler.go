package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
	"github.com/solo-knight-dev/fyllo-ai/pkg/billing"
	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
	"github.com/solo-knight-dev/fyllo-ai/pkg/statemachine"
	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/store"
)

// Outcome classifies how a webhook delivery was handled. Every outcome is a
// success from the provider's point of view; it must not retry any of them.
type Outcome string

const (
	OutcomeApplied            Outcome = "applied"
	OutcomeNoChange           Outcome = "no_change"
	OutcomeStaleIgnored       Outcome = "stale_ignored"
	OutcomeRegressionIgnored  Outcome = "regression_ignored"
	OutcomeCancellationLogged Outcome = "cancellation_logged"
	OutcomeUnknownIgnored     Outcome = "unknown_event_ignored"
	OutcomeDuplicateIgnored   Outcome = "duplicate_ignored"
)

// WebhookResult is returned for every accepted webhook delivery.
type WebhookResult struct {
	Outcome Outcome
	Plan    plan.Plan
	Credits int
	Message string
}

// SyncResult is returned from a manual subscription sync.
type SyncResult struct {
	Plan         plan.Plan
	Credits      int
	PreviousPlan plan.Plan
	Message      string
}

// Store is the user persistence surface the reconciler needs.
type Store interface {
	Get(ctx context.Context, uid string) (*store.User, error)
	ApplyPlanChange(ctx context.Context, uid string, change store.PlanChange) error
}

// ClaimsSetter mirrors the plan into auth custom claims.
type ClaimsSetter interface {
	SetPlanClaim(ctx context.Context, userID, plan string) error
}

// Reconciler applies billing state to user profiles.
type Reconciler struct {
	store    Store
	provider billing.Provider
	claims   ClaimsSetter
	mailer   email.EmailSender
	dedup    Deduper
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a reconciler.
func New(st Store, provider billing.Provider, claims ClaimsSetter, mailer email.EmailSender, dedup Deduper, logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if dedup == nil {
		dedup = NewMemoryDeduper()
	}
	r := &Reconciler{
		store:    st,
		provider: provider,
		claims:   claims,
		mailer:   mailer,
		dedup:    dedup,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleWebhook processes one billing webhook delivery. Business rejections
// (duplicates, stale events, regressions, unknown types) return a result, not
// an error; only infrastructure failures error out.
func (r *Reconciler) HandleWebhook(ctx context.Context, event billing.WebhookEvent) (*WebhookResult, error) {
	uid := event.AppUserID

	if dup, err := r.dedup.Seen(ctx, event.Fingerprint()); err != nil {
		// Dedup is an optimization. When it is unavailable the guards below
		// still keep reprocessing harmless, so fail open.
		r.logger.Warn("webhook dedup unavailable, processing anyway",
			slog.String("uid", uid),
			slog.String("error", err.Error()))
	} else if dup {
		r.logger.Info("duplicate webhook suppressed",
			slog.String("uid", uid),
			slog.String("type", string(event.Type)))
		return &WebhookResult{Outcome: OutcomeDuplicateIgnored, Message: "Duplicate delivery ignored"}, nil
	}

	result, err := r.dispatch(ctx, event)
	if err != nil {
		return nil, err
	}

	// The fingerprint is marked only after the delivery was handled, so the
	// provider's retry of a failed delivery is processed, not suppressed.
	if err := r.dedup.Mark(ctx, event.Fingerprint()); err != nil {
		r.logger.Warn("webhook dedup mark failed",
			slog.String("uid", uid),
			slog.String("error", err.Error()))
	}
	return result, nil
}

func (r *Reconciler) dispatch(ctx context.Context, event billing.WebhookEvent) (*WebhookResult, error) {
	uid := event.AppUserID

	user, err := r.store.Get(ctx, uid)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return nil, errors.Join(ErrApplyFailed, err)
	}

	current := plan.Free
	var lastSyncAt *time.Time
	var userEmail string
	if user != nil {
		current = plan.Parse(user.Plan)
		lastSyncAt = user.LastSyncAt
		userEmail = user.Email
	}

	r.logger.Info("webhook received",
		slog.String("uid", uid),
		slog.String("type", string(event.Type)),
		slog.String("current_plan", current.String()),
		slog.Any("entitlements", event.EntitlementIDs))

	switch {
	case event.Type == billing.EventCancellation:
		// Auto-renew was turned off; the plan holds until expiration.
		r.logger.Info("cancellation logged, plan maintained until expiration",
			slog.String("uid", uid))
		return &WebhookResult{Outcome: OutcomeCancellationLogged, Plan: current, Message: "Cancellation logged"}, nil

	case event.Type == billing.EventExpiration:
		return r.handleExpiration(ctx, event, current, userEmail)

	case event.Type.IsActive():
		return r.handleActivation(ctx, event, current, lastSyncAt, userEmail)

	default:
		// Lifecycle noise (billing issues, transfers, test pings). Touching
		// the plan here could silently downgrade a paying user.
		r.logger.Info("unhandled webhook type ignored",
			slog.String("uid", uid),
			slog.String("type", string(event.Type)))
		return &WebhookResult{Outcome: OutcomeUnknownIgnored, Plan: current, Message: "Event type not handled"}, nil
	}
}

func (r *Reconciler) handleActivation(ctx context.Context, event billing.WebhookEvent, current plan.Plan, lastSyncAt *time.Time, userEmail string) (*WebhookResult, error) {
	uid := event.AppUserID
	candidate := plan.FromEntitlementIDs(event.EntitlementIDs)

	machine, err := newPlanMachine(current)
	if err != nil {
		return nil, errors.Join(ErrApplyFailed, err)
	}

	d := &decision{
		candidate:  candidate,
		eventTime:  event.Timestamp(),
		lastSyncAt: lastSyncAt,
	}

	if err := machine.Fire(ctx, eventActivate, d); err != nil {
		if errors.Is(err, statemachine.ErrTransitionRejected) {
			switch d.reason {
			case rejectRegression:
				r.logger.Warn("stale webhook attempted downgrade, ignoring",
					slog.String("uid", uid),
					slog.String("current_plan", current.String()),
					slog.String("candidate_plan", candidate.String()))
				return &WebhookResult{
					Outcome: OutcomeRegressionIgnored,
					Plan:    current,
					Message: "Stale webhook ignored - user already on higher plan",
				}, nil
			case rejectStale:
				r.logger.Warn("outdated webhook ignored, newer sync already processed",
					slog.String("uid", uid),
					slog.Time("event_time", d.eventTime))
				return &WebhookResult{
					Outcome: OutcomeStaleIgnored,
					Plan:    current,
					Message: "Outdated webhook ignored - newer sync already processed",
				}, nil
			}
		}
		return nil, errors.Join(ErrApplyFailed, err)
	}

	target := plan.Parse(machine.Current().Name())
	if target == current {
		r.logger.Info("no plan change detected, skipping write",
			slog.String("uid", uid),
			slog.String("plan", current.String()))
		return &WebhookResult{
			Outcome: OutcomeNoChange,
			Plan:    current,
			Credits: current.Credits(),
			Message: "No update needed - plan unchanged",
		}, nil
	}

	if err := r.applyWebhookChange(ctx, uid, target, string(event.Type)); err != nil {
		return nil, err
	}

	r.logger.Info("plan updated from webhook",
		slog.String("uid", uid),
		slog.String("from", current.String()),
		slog.String("to", target.String()),
		slog.Int("credits", target.Credits()))

	if userEmail != "" && target != plan.Free {
		params := email.SubscriptionSuccessEmail(userEmail, target.String(), target.Credits())
		async.Fire(r.logger, "subscription_email", func(ctx context.Context) error {
			return r.mailer.SendEmail(ctx, params)
		})
	}

	return &WebhookResult{Outcome: OutcomeApplied, Plan: target, Credits: target.Credits()}, nil
}

func (r *Reconciler) handleExpiration(ctx context.Context, event billing.WebhookEvent, current plan.Plan, userEmail string) (*WebhookResult, error) {
	uid := event.AppUserID

	if userEmail != "" {
		params := email.SubscriptionExpiredEmail(userEmail)
		async.Fire(r.logger, "expiration_email", func(ctx context.Context) error {
			return r.mailer.SendEmail(ctx, params)
		})
	}

	machine, err := newPlanMachine(current)
	if err != nil {
		return nil, errors.Join(ErrApplyFailed, err)
	}
	if err := machine.Fire(ctx, eventExpire, nil); err != nil {
		return nil, errors.Join(ErrApplyFailed, err)
	}

	target := plan.Parse(machine.Current().Name())
	if target == current {
		return &WebhookResult{
			Outcome: OutcomeNoChange,
			Plan:    current,
			Credits: current.Credits(),
			Message: "No update needed - plan unchanged",
		}, nil
	}

	if err := r.applyWebhookChange(ctx, uid, target, string(event.Type)); err != nil {
		return nil, err
	}

	r.logger.Info("subscription expired, downgraded to free",
		slog.String("uid", uid),
		slog.String("from", current.String()))

	return &WebhookResult{Outcome: OutcomeApplied, Plan: target, Credits: target.Credits()}, nil
}

// applyWebhookChange mirrors the plan into auth claims and writes the profile
// with a full credit allowance for the new plan.
func (r *Reconciler) applyWebhookChange(ctx context.Context, uid string, target plan.Plan, webhookType string) error {
	if err := r.claims.SetPlanClaim(ctx, uid, target.String()); err != nil {
		return errors.Join(ErrApplyFailed, err)
	}

	err := r.store.ApplyPlanChange(ctx, uid, store.PlanChange{
		Plan:        target.String(),
		Credits:     target.Credits(),
		WebhookType: webhookType,
	})
	if err != nil {
		return errors.Join(ErrApplyFailed, err)
	}
	return nil
}

// SyncNow verifies the subscription directly with the billing provider and
// overwrites the stored plan with whatever the provider says, stamping the
// sync time that protects the result from older webhooks.
func (r *Reconciler) SyncNow(ctx context.Context, uid string) (*SyncResult, error) {
	sub, err := r.provider.GetSubscriber(ctx, uid)
	if err != nil {
		return nil, errors.Join(ErrSyncFailed, err)
	}

	now := r.now()
	active := sub.ActiveEntitlements(now)
	target := plan.FromEntitlements(active, now)

	if len(active) == 0 {
		r.logger.Warn("no active entitlements found, user may have cancelled or refunded",
			slog.String("uid", uid))
	}

	previous := plan.Free
	if user, err := r.store.Get(ctx, uid); err == nil {
		previous = plan.Parse(user.Plan)
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, errors.Join(ErrSyncFailed, err)
	}

	err = r.store.ApplyPlanChange(ctx, uid, store.PlanChange{
		Plan:       target.String(),
		Credits:    target.Credits(),
		ManualSync: true,
	})
	if err != nil {
		return nil, errors.Join(ErrSyncFailed, err)
	}

	if err := r.claims.SetPlanClaim(ctx, uid, target.String()); err != nil {
		return nil, errors.Join(ErrSyncFailed, err)
	}

	r.logger.Info("subscription synced",
		slog.String("uid", uid),
		slog.String("from", previous.String()),
		slog.String("to", target.String()),
		slog.Int("credits", target.Credits()))

	return &SyncResult{
		Plan:         target,
		Credits:      target.Credits(),
		PreviousPlan: previous,
		Message:      fmt.Sprintf("Upgraded to %s with %d credits", strings.ToUpper(target.String()), target.Credits()),
	}, nil
}
