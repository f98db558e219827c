// Package plan defines the subscription tiers and the credit policy attached
// to them. Everything that grants, compares, or resets AI scan credits goes
// through this package so the policy lives in one place.
package plan

import (
	"strings"
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	Free  Plan = "free"
	Pro   Plan = "pro"
	Elite Plan = "elite"
)

// Entitlement identifiers as configured in the billing provider.
const (
	EntitlementPro   = "Pro"
	EntitlementElite = "Elite"
)

// Parse maps a stored plan string to a Plan. Unknown values resolve to Free
// so a corrupted document can never grant paid credits.
func Parse(s string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case Pro:
		return Pro
	case Elite:
		return Elite
	default:
		return Free
	}
}

// String returns the wire form of the plan.
func (p Plan) String() string { return string(p) }

// Credits returns the monthly AI scan allowance for the plan.
func (p Plan) Credits() int {
	switch p {
	case Elite:
		return 200
	case Pro:
		return 100
	default:
		return 10
	}
}

// Rank orders plans for upgrade/downgrade comparison. Higher is better.
func (p Plan) Rank() int {
	switch p {
	case Elite:
		return 2
	case Pro:
		return 1
	default:
		return 0
	}
}

// Paid reports whether the plan is a paying tier.
func (p Plan) Paid() bool { return p == Pro || p == Elite }

// FromEntitlementIDs resolves the plan granted by a set of entitlement
// identifiers. Elite takes priority over Pro; anything else is Free.
func FromEntitlementIDs(ids []string) Plan {
	result := Free
	for _, id := range ids {
		switch id {
		case EntitlementElite:
			return Elite
		case EntitlementPro:
			result = Pro
		}
	}
	return result
}

// FromEntitlements resolves the plan from entitlement expiry times. Only
// entitlements expiring strictly after now count; Elite takes priority.
func FromEntitlements(expirations map[string]time.Time, now time.Time) Plan {
	result := Free
	for id, expires := range expirations {
		if !expires.After(now) {
			continue
		}
		switch id {
		case EntitlementElite:
			return Elite
		case EntitlementPro:
			result = Pro
		}
	}
	return result
}
