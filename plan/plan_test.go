package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/solo-knight-dev/fyllo-ai/plan"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  plan.Plan
	}{
		{"free", plan.Free},
		{"pro", plan.Pro},
		{"elite", plan.Elite},
		{"Elite", plan.Elite},
		{"  pro  ", plan.Pro},
		{"", plan.Free},
		{"premium", plan.Free},
		{"admin", plan.Free},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plan.Parse(tt.input))
		})
	}
}

func TestCreditsAndRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, plan.Free.Credits())
	assert.Equal(t, 100, plan.Pro.Credits())
	assert.Equal(t, 200, plan.Elite.Credits())

	assert.Equal(t, 0, plan.Free.Rank())
	assert.Equal(t, 1, plan.Pro.Rank())
	assert.Equal(t, 2, plan.Elite.Rank())

	assert.False(t, plan.Free.Paid())
	assert.True(t, plan.Pro.Paid())
	assert.True(t, plan.Elite.Paid())
}

func TestFromEntitlementIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ids  []string
		want plan.Plan
	}{
		{"empty", nil, plan.Free},
		{"pro only", []string{"Pro"}, plan.Pro},
		{"elite only", []string{"Elite"}, plan.Elite},
		{"elite wins over pro", []string{"Pro", "Elite"}, plan.Elite},
		{"elite wins regardless of order", []string{"Elite", "Pro"}, plan.Elite},
		{"unknown ids ignored", []string{"Gold", "Platinum"}, plan.Free},
		{"case sensitive", []string{"pro"}, plan.Free},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plan.FromEntitlementIDs(tt.ids))
		})
	}
}

func TestFromEntitlements(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name string
		ents map[string]time.Time
		want plan.Plan
	}{
		{"nil map", nil, plan.Free},
		{"active pro", map[string]time.Time{"Pro": future}, plan.Pro},
		{"active elite", map[string]time.Time{"Elite": future}, plan.Elite},
		{"expired pro", map[string]time.Time{"Pro": past}, plan.Free},
		{"expiry exactly now does not count", map[string]time.Time{"Pro": now}, plan.Free},
		{"elite beats pro", map[string]time.Time{"Pro": future, "Elite": future}, plan.Elite},
		{"expired elite falls back to pro", map[string]time.Time{"Pro": future, "Elite": past}, plan.Pro},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plan.FromEntitlements(tt.ents, now))
		})
	}
}
