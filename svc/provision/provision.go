package provision

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/store"
)

// ReferralReward is the credit amount granted to both sides of a referral.
const ReferralReward = 20

const defaultName = "New User"

// Store is the user persistence surface the provisioner needs.
type Store interface {
	EnsureDefaults(ctx context.Context, uid string, d store.Defaults) error
	AwardReferral(ctx context.Context, inviterID string, reward int) (*store.User, error)
	AppendReferral(ctx context.Context, ref *store.Referral) error
}

// ClaimsSetter mirrors the plan into auth custom claims.
type ClaimsSetter interface {
	SetPlanClaim(ctx context.Context, userID, plan string) error
}

// Provisioner initializes freshly signed-up user profiles.
type Provisioner struct {
	store  Store
	claims ClaimsSetter
	mailer email.EmailSender
	logger *slog.Logger
}

// New creates a provisioner.
func New(st Store, claims ClaimsSetter, mailer email.EmailSender, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{store: st, claims: claims, mailer: mailer, logger: logger}
}

// HandleUserCreated runs the provisioning flow for a new profile document.
// The seed carries whatever the client sent at signup; missing fields get
// defaults. Referral rewards are granted before the invitee's own defaults so
// the bonus lands in the initial credit allowance.
func (p *Provisioner) HandleUserCreated(ctx context.Context, seed *store.User) {
	uid := seed.ID
	initialCredits := plan.Free.Credits()

	if referredBy := strings.TrimSpace(seed.ReferredBy); referredBy != "" {
		bonus, ok := p.rewardReferral(ctx, referredBy, seed)
		if !ok {
			return
		}
		initialCredits += bonus
	}

	name := seed.Name
	if name == "" {
		name = defaultName
	}

	err := p.store.EnsureDefaults(ctx, uid, store.Defaults{
		Email:   seed.Email,
		Name:    name,
		Photo:   seed.Photo,
		Plan:    plan.Free.String(),
		Credits: initialCredits,
	})
	if err != nil {
		p.logger.Error("profile init failed",
			slog.String("uid", uid),
			slog.String("error", err.Error()))
		return
	}

	if err := p.claims.SetPlanClaim(ctx, uid, plan.Free.String()); err != nil {
		p.logger.Error("profile init failed to set plan claim",
			slog.String("uid", uid),
			slog.String("error", err.Error()))
		return
	}

	p.logger.Info("user initialized",
		slog.String("uid", uid),
		slog.String("plan", plan.Free.String()),
		slog.Int("credits", initialCredits))

	if seed.Email != "" {
		params := email.WelcomeEmail(seed.Email, name)
		async.Fire(p.logger, "welcome_email", func(ctx context.Context) error {
			return p.mailer.SendEmail(ctx, params)
		})
	}
}

// rewardReferral credits the inviter, records the audit entry and notifies
// the inviter. Returns the invitee's bonus and whether provisioning should
// continue. An unknown inviter skips the reward silently; storage failures
// abort the flow.
func (p *Provisioner) rewardReferral(ctx context.Context, inviterID string, seed *store.User) (int, bool) {
	inviter, err := p.store.AwardReferral(ctx, inviterID, ReferralReward)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			p.logger.Warn("inviter not found, skipping referral reward",
				slog.String("uid", seed.ID),
				slog.String("inviter", inviterID))
			return 0, true
		}
		p.logger.Error("profile init failed to award referral",
			slog.String("uid", seed.ID),
			slog.String("inviter", inviterID),
			slog.String("error", err.Error()))
		return 0, false
	}

	ref := &store.Referral{
		ID:           uuid.NewString(),
		InviterID:    inviterID,
		InviteeID:    seed.ID,
		InviteeEmail: seed.Email,
		RewardAmount: ReferralReward,
		Status:       store.ReferralStatusCompleted,
		Type:         store.ReferralTypeDualReward,
	}
	if err := p.store.AppendReferral(ctx, ref); err != nil {
		p.logger.Error("profile init failed to record referral",
			slog.String("uid", seed.ID),
			slog.String("inviter", inviterID),
			slog.String("error", err.Error()))
		return 0, false
	}

	p.logger.Info("referral reward granted",
		slog.String("inviter", inviterID),
		slog.String("invitee", seed.ID),
		slog.Int("reward", ReferralReward))

	if inviter.Email != "" {
		params := email.ReferralSuccessEmail(inviter.Email, ReferralReward, inviter.ReferralCount)
		async.Fire(p.logger, "referral_email", func(ctx context.Context) error {
			return p.mailer.SendEmail(ctx, params)
		})
	}

	return ReferralReward, true
}
