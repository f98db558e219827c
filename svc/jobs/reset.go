package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/store"
)

// syncPreserveWindow keeps sync metadata intact for users who manually synced
// just before the reset ran, so the reset does not mask a fresh upgrade.
const syncPreserveWindow = time.Hour

// Pager yields pages of users; a nil page means iteration is done.
type Pager interface {
	Next(ctx context.Context) ([]store.User, error)
}

// ResetStore is the persistence surface of the reset job.
type ResetStore interface {
	BulkResetCredits(ctx context.Context, page []store.CreditReset) error
}

// ResetStats summarizes one reset run.
type ResetStats struct {
	Processed   int
	Updated     int
	PagesFailed int
}

// ResetJob restores every user's credit balance to their plan's monthly
// allowance.
type ResetJob struct {
	store  ResetStore
	pager  func() Pager
	mailer email.EmailSender
	logger *slog.Logger
	now    func() time.Time
}

// ResetOption configures a ResetJob.
type ResetOption func(*ResetJob)

// WithResetClock overrides the time source, used in tests.
func WithResetClock(now func() time.Time) ResetOption {
	return func(j *ResetJob) {
		if now != nil {
			j.now = now
		}
	}
}

// NewResetJob creates the monthly reset job. The pager factory returns a
// fresh iteration over all users for each run.
func NewResetJob(st ResetStore, pager func() Pager, mailer email.EmailSender, logger *slog.Logger, opts ...ResetOption) *ResetJob {
	if logger == nil {
		logger = slog.Default()
	}
	j := &ResetJob{store: st, pager: pager, mailer: mailer, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run executes the reset, satisfying the schedule runner's job signature.
func (j *ResetJob) Run(ctx context.Context) error {
	_, err := j.RunWithStats(ctx)
	return err
}

// RunWithStats pages through all users and corrects any balance that drifted
// from the plan allowance. A failed page is logged and skipped; the run keeps
// going so one bad batch cannot starve everyone behind it.
func (j *ResetJob) RunWithStats(ctx context.Context) (ResetStats, error) {
	j.logger.Info("starting monthly credit reset")

	var stats ResetStats
	it := j.pager()

	for {
		page, err := it.Next(ctx)
		if err != nil {
			return stats, err
		}
		if len(page) == 0 {
			break
		}

		resets := j.collectResets(page)
		stats.Processed += len(page)

		if len(resets) == 0 {
			continue
		}

		if err := j.store.BulkResetCredits(ctx, resets); err != nil {
			stats.PagesFailed++
			j.logger.Error("credit reset page failed, continuing",
				slog.Int("page_size", len(resets)),
				slog.String("error", err.Error()))
			continue
		}
		stats.Updated += len(resets)

		j.notifyPaidUsers(page)

		j.logger.Info("credit reset progress",
			slog.Int("processed", stats.Processed),
			slog.Int("updated", stats.Updated))
	}

	j.logger.Info("monthly credit reset complete",
		slog.Int("processed", stats.Processed),
		slog.Int("updated", stats.Updated),
		slog.Int("pages_failed", stats.PagesFailed))

	return stats, nil
}

// collectResets selects the users whose balance differs from their plan
// allowance.
func (j *ResetJob) collectResets(page []store.User) []store.CreditReset {
	now := j.now()

	var resets []store.CreditReset
	for _, u := range page {
		allowance := plan.Parse(u.Plan).Credits()
		if u.AiCredits == allowance {
			continue
		}

		preserve := u.LastSyncAt != nil && now.Sub(*u.LastSyncAt) < syncPreserveWindow
		if preserve {
			j.logger.Warn("user synced recently, preserving sync metadata",
				slog.String("uid", u.ID),
				slog.Time("last_sync_at", *u.LastSyncAt))
		}

		resets = append(resets, store.CreditReset{
			UID:          u.ID,
			Credits:      allowance,
			PreserveSync: preserve,
		})
	}
	return resets
}

// notifyPaidUsers emails pro and elite users whose balance was corrected.
func (j *ResetJob) notifyPaidUsers(page []store.User) {
	for _, u := range page {
		p := plan.Parse(u.Plan)
		if !p.Paid() || u.Email == "" || u.AiCredits == p.Credits() {
			continue
		}
		params := email.CreditResetEmail(u.Email, p.String(), p.Credits())
		async.Fire(j.logger, "credit_reset_email", func(ctx context.Context) error {
			return j.mailer.SendEmail(ctx, params)
		})
	}
}
