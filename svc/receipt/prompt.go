package receipt

import (
	"fmt"

	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/store"
)

// PromptContext carries the user attributes the prompt is personalized with.
type PromptContext struct {
	Jurisdiction string
	TaxBody      string
	Year         int
	WorkType     string
	RawText      string
}

// occupationContext builds the work-type block injected into every tier.
func occupationContext(c PromptContext) string {
	if c.WorkType == "" {
		return ""
	}

	country := fmt.Sprintf("%s (%s)", c.Jurisdiction, c.TaxBody)

	switch c.WorkType {
	case store.WorkTypeEmployed:
		return fmt.Sprintf(`
USER PROFILE: Salaried Employee in %s
INSTRUCTION: Identify deductions relevant to employees in %s.
Examples (adapt to local %s rules): Unreimbursed professional expenses, union dues, work-related training, or home office (if applicable locally).
AVOID: Assuming business deductions unless explicitly allowed for employees under %s rules.`,
			country, c.Jurisdiction, c.TaxBody, c.TaxBody)
	case store.WorkTypeSelfEmployed:
		return fmt.Sprintf(`
USER PROFILE: Self-Employed / Freelancer in %s
INSTRUCTION: Apply %s rules for sole proprietorships/freelancers.
FOCUS: Business expenses, home office (use local calculation methods), vehicle/mileage, and self-employment tax credits.
TERMINOLOGY: Use the correct local tax forms (e.g., Schedule C for USA, T2125 for Canada, Self Assessment for UK, etc.).`,
			country, c.TaxBody)
	case store.WorkTypeBusiness:
		return fmt.Sprintf(`
USER PROFILE: Business Owner (Company/LLC) in %s
INSTRUCTION: Apply corporate tax principles for %s.
FOCUS: Operating expenses, asset depreciation/capital allowances (use local rules like Section 179 for US or Capital Allowances for UK), payroll, and entity-level deductions.
COMPLIANCE: Cite specific matching rules for %s.`,
			country, c.TaxBody, c.Jurisdiction)
	default:
		return ""
	}
}

// BuildPrompt assembles the plan-tiered analysis prompt. Higher tiers ask for
// more fields and strategic guidance; the model pays for what the user pays
// for.
func BuildPrompt(tier plan.Plan, c PromptContext) string {
	occupation := occupationContext(c)

	switch tier {
	case plan.Elite:
		return fmt.Sprintf(`You are an Elite Tax Strategist and Master CPA for the %s (%s).
Your mission is to maximize legal deductions while ensuring 100%% compliance and providing strategic tax guidance.
Current Tax Year: %d.
%s

ELITE ANALYSIS REQUIREMENTS:
Analyze this receipt text and provide comprehensive tax intelligence with strategic recommendations.

Receipt Text:
"""
%s
"""

Return STRICT JSON only. Do not wrap in markdown or code blocks.

JSON STRUCTURE (Required):
{
  "amount": number,
  "merchant": string,
  "category": string,
  "date": string,
  "summary": string,
  "auditorExplanation": string,
  "taxImpact": string,
  "deductionType": string,
  "strategicGuidance": string,
  "optimizationTips": string,
  "riskLevel": string
}

ELITE-SPECIFIC FIELDS:
- "strategicGuidance": Provide 2-3 strategic recommendations for maximizing this deduction or related tax benefits
- "optimizationTips": Suggest specific actions to optimize tax position (e.g., "Consider bundling similar expenses", "Document business purpose clearly")
- "riskLevel": Assess audit risk as "Low", "Medium", or "High" with brief justification`,
			c.Jurisdiction, c.TaxBody, c.Year, occupation, c.RawText)

	case plan.Pro:
		return fmt.Sprintf(`You are a Professional Tax Auditor and CPA for the %s (%s).
Provide detailed tax analysis with clear deduction guidance.
Current Tax Year: %d.
%s

PRO ANALYSIS REQUIREMENTS:
Analyze this receipt and provide detailed tax insights.

Receipt Text:
"""
%s
"""

Return STRICT JSON only. Do not wrap in markdown or code blocks.

JSON STRUCTURE (Required):
{
  "amount": number,
  "merchant": string,
  "category": string,
  "date": string,
  "summary": string,
  "auditorExplanation": string,
  "taxImpact": string,
  "deductionType": string,
  "complianceNotes": string
}

PRO-SPECIFIC FIELDS:
- "auditorExplanation": Detailed reasoning citing specific %s rules and regulations
- "taxImpact": Precise deduction percentage with limitations (e.g., "100%% Deductible", "50%% Meal Limit per IRC Section 274(n)")
- "deductionType": Specific tax form and line item (e.g., "Schedule C - Line 24b: Travel")
- "complianceNotes": Any documentation requirements or compliance considerations`,
			c.Jurisdiction, c.TaxBody, c.Year, occupation, c.RawText, c.TaxBody)

	default:
		return fmt.Sprintf(`You are a Tax Assistant for the %s (%s).
Analyze using available tax laws for the %d tax year.
%s
DISCLAIMER: You are an AI Assistant, not a lawyer.

Analyze this receipt text and extract JSON ONLY. No markdown.

Receipt Text:
"""
%s
"""

Return JSON with these keys:
- "amount": number (float)
- "merchant": string (business name)
- "category": string (e.g. Travel, Meals, Office, Software)
- "date": string (ISO 8601 YYYY-MM-DD)
- "summary": string (brief description)
- "auditorExplanation": string (Why is this deductible? Cite %s rules.)
- "taxImpact": string (e.g. "100%% Deductible", "50%% Meal Limit")
- "deductionType": string (Specific tax line item)`,
			c.Jurisdiction, c.TaxBody, c.Year, occupation, c.RawText, c.TaxBody)
	}
}
