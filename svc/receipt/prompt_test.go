package receipt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/svc/receipt"
)

func TestBuildPrompt_OccupationContext(t *testing.T) {
	t.Parallel()

	base := receipt.PromptContext{
		Jurisdiction: "CANADA",
		TaxBody:      "CRA",
		Year:         2025,
		RawText:      "HOME DEPOT 45.00",
	}

	tests := []struct {
		workType string
		want     string
	}{
		{"EMPLOYED", "Salaried Employee in CANADA (CRA)"},
		{"SELF_EMPLOYED", "Self-Employed / Freelancer in CANADA (CRA)"},
		{"BUSINESS", "Business Owner (Company/LLC) in CANADA (CRA)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.workType, func(t *testing.T) {
			t.Parallel()

			c := base
			c.WorkType = tt.workType
			prompt := receipt.BuildPrompt(plan.Free, c)
			assert.Contains(t, prompt, tt.want)
		})
	}
}

func TestBuildPrompt_NoWorkTypeOmitsProfile(t *testing.T) {
	t.Parallel()

	prompt := receipt.BuildPrompt(plan.Pro, receipt.PromptContext{
		Jurisdiction: "USA",
		TaxBody:      "IRS",
		Year:         2025,
		RawText:      "receipt text",
	})

	assert.NotContains(t, prompt, "USER PROFILE")
	assert.Contains(t, prompt, "Current Tax Year: 2025")
	assert.Contains(t, prompt, "receipt text")
}

func TestBuildPrompt_UnknownWorkTypeIgnored(t *testing.T) {
	t.Parallel()

	prompt := receipt.BuildPrompt(plan.Elite, receipt.PromptContext{
		Jurisdiction: "USA",
		TaxBody:      "IRS",
		Year:         2025,
		WorkType:     "RETIRED",
		RawText:      "receipt text",
	})

	assert.NotContains(t, prompt, "USER PROFILE")
}
