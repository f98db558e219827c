package subscription

import (
	"context"
	"time"

	"github.com/solo-knight-dev/fyllo-ai/pkg/statemachine"
	"github.com/solo-knight-dev/fyllo-ai/plan"
)

// Rejection reasons recorded by the guards.
type rejectReason string

const (
	rejectNone       rejectReason = ""
	rejectRegression rejectReason = "regression"
	rejectStale      rejectReason = "stale"
)

// decision carries the webhook-derived facts the guards evaluate, plus the
// reason the losing guard recorded.
type decision struct {
	candidate  plan.Plan
	eventTime  time.Time  // zero when the webhook carried no timestamp
	lastSyncAt *time.Time // nil when the user never manually synced
	reason     rejectReason
}

var (
	eventActivate = statemachine.StringEvent("activate")
	eventExpire   = statemachine.StringEvent("expire")
)

func stateOf(p plan.Plan) statemachine.State {
	return statemachine.StringState(p.String())
}

// guardCandidateIs routes the activate event to the transition matching the
// entitlement-derived plan. A mismatch is not a rejection, just the wrong
// branch.
func guardCandidateIs(target plan.Plan) statemachine.Guard {
	return func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
		d, ok := data.(*decision)
		return ok && d.candidate == target
	}
}

// guardNoRegression blocks activations that would lower the plan. Stale
// webhooks from an earlier purchase must not undo an upgrade.
func guardNoRegression(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
	d, ok := data.(*decision)
	if !ok {
		return false
	}
	current := plan.Parse(from.Name())
	if d.candidate.Rank() < current.Rank() {
		d.reason = rejectRegression
		return false
	}
	return true
}

// guardNotStale blocks webhooks older than the last manual sync; the sync
// already reflects newer provider state.
func guardNotStale(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
	d, ok := data.(*decision)
	if !ok {
		return false
	}
	if d.eventTime.IsZero() || d.lastSyncAt == nil {
		return true
	}
	if d.eventTime.Before(*d.lastSyncAt) {
		d.reason = rejectStale
		return false
	}
	return true
}

// newPlanMachine builds the per-evaluation plan machine positioned at the
// user's current plan. Activation can reach any plan the guards allow;
// expiration always lands on free.
func newPlanMachine(current plan.Plan) (*statemachine.Machine, error) {
	m, err := statemachine.New(stateOf(current))
	if err != nil {
		return nil, err
	}

	plans := []plan.Plan{plan.Free, plan.Pro, plan.Elite}
	for _, from := range plans {
		for _, to := range plans {
			err := m.AddTransition(stateOf(from), stateOf(to), eventActivate,
				[]statemachine.Guard{guardCandidateIs(to), guardNoRegression, guardNotStale}, nil)
			if err != nil {
				return nil, err
			}
		}
		if err := m.AddTransition(stateOf(from), stateOf(plan.Free), eventExpire, nil, nil); err != nil {
			return nil, err
		}
	}
	return m, nil
}
