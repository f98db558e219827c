package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/solo-knight-dev/fyllo-ai/pkg/archive"
	"github.com/solo-knight-dev/fyllo-ai/pkg/async"
	"github.com/solo-knight-dev/fyllo-ai/pkg/gemini"
	"github.com/solo-knight-dev/fyllo-ai/plan"
	"github.com/solo-knight-dev/fyllo-ai/store"
)

const minTextLength = 5

// Defaults applied when the profile lacks tax locale fields.
const (
	defaultJurisdiction = "USA"
	defaultTaxBody      = "IRS"
)

// Marker values returned when the model found no usable receipt.
const (
	noReceiptError   = "no_receipt_found"
	noReceiptMessage = "AI could not identify a clear receipt in this image."
)

// Result is the structured analysis returned to the client. Tier-specific
// fields stay empty on lower plans.
type Result struct {
	Amount             float64 `json:"amount"`
	Merchant           string  `json:"merchant"`
	Category           string  `json:"category"`
	Date               string  `json:"date"`
	Summary            string  `json:"summary"`
	AuditorExplanation string  `json:"auditorExplanation"`
	TaxImpact          string  `json:"taxImpact"`
	DeductionType      string  `json:"deductionType"`
	ComplianceNotes    string  `json:"complianceNotes,omitempty"`
	StrategicGuidance  string  `json:"strategicGuidance,omitempty"`
	OptimizationTips   string  `json:"optimizationTips,omitempty"`
	RiskLevel          string  `json:"riskLevel,omitempty"`

	// Error/Message are set when the model analyzed the text but found no
	// valid receipt. The scan is not charged in that case.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Charged reports whether this result consumed a credit.
func (r *Result) Charged() bool { return r.Error == "" }

// Store is the user persistence surface the analyzer needs.
type Store interface {
	Get(ctx context.Context, uid string) (*store.User, error)
	CheckCredits(ctx context.Context, uid string) error
	DebitScanCredit(ctx context.Context, uid string) error
}

// Analyzer runs the credit-gated receipt analysis pipeline.
type Analyzer struct {
	store   Store
	ai      gemini.Completer
	archive archive.Storage // nil disables artifact archiving
	logger  *slog.Logger
	now     func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithArchive enables fire-and-forget archiving of successful analyses.
func WithArchive(st archive.Storage) AnalyzerOption {
	return func(a *Analyzer) { a.archive = st }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an analyzer.
func New(st Store, ai gemini.Completer, logger *slog.Logger, opts ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzer{store: st, ai: ai, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the full pipeline for one receipt scan. The credit check runs
// before any model call so a broke user costs nothing; the debit happens only
// after the model returned a plausible receipt.
func (a *Analyzer) Analyze(ctx context.Context, uid, rawText string) (*Result, error) {
	if err := a.store.CheckCredits(ctx, uid); err != nil {
		if errors.Is(err, store.ErrNoCredits) {
			return nil, ErrNoCredits
		}
		return nil, err
	}

	if utf8.RuneCountInString(rawText) < minTextLength {
		return nil, ErrTextTooShort
	}

	user, err := a.store.Get(ctx, uid)
	if err != nil {
		return nil, errors.Join(ErrAnalysisFailed, err)
	}

	promptCtx := PromptContext{
		Jurisdiction: user.Jurisdiction,
		TaxBody:      user.TaxBody,
		Year:         a.now().Year(),
		WorkType:     user.WorkType,
		RawText:      rawText,
	}
	if promptCtx.Jurisdiction == "" {
		promptCtx.Jurisdiction = defaultJurisdiction
	}
	if promptCtx.TaxBody == "" {
		promptCtx.TaxBody = defaultTaxBody
	}

	tier := plan.Parse(user.Plan)
	prompt := BuildPrompt(tier, promptCtx)

	raw, err := a.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var result Result
	cleaned := gemini.StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed model response: %v", ErrAnalysisFailed, err)
	}

	if !validReceipt(&result) {
		a.logger.Info("analysis found no valid receipt, skipping credit debit",
			slog.String("uid", uid))
		result.Error = noReceiptError
		result.Message = noReceiptMessage
		return &result, nil
	}

	if err := a.store.DebitScanCredit(ctx, uid); err != nil {
		if errors.Is(err, store.ErrNoCredits) {
			return nil, ErrNoCredits
		}
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	a.logger.Info("receipt analyzed",
		slog.String("uid", uid),
		slog.String("merchant", result.Merchant),
		slog.Float64("amount", result.Amount),
		slog.String("plan", tier.String()))

	a.archiveResult(uid, rawText, &result)

	return &result, nil
}

// validReceipt gates the credit debit: the model must have extracted a
// positive amount and a real merchant name.
func validReceipt(r *Result) bool {
	if r.Amount <= 0 {
		return false
	}
	merchant := strings.ToLower(r.Merchant)
	if merchant == "" || strings.Contains(merchant, "unknown") || strings.Contains(merchant, "none") {
		return false
	}
	return true
}

type artifact struct {
	UID        string    `json:"uid"`
	RawText    string    `json:"rawText"`
	Result     *Result   `json:"result"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

func (a *Analyzer) archiveResult(uid, rawText string, result *Result) {
	if a.archive == nil {
		return
	}

	analyzedAt := a.now().UTC()
	key := fmt.Sprintf("receipts/%s/%d.json", uid, analyzedAt.UnixNano())

	async.Fire(a.logger, "archive_receipt", func(ctx context.Context) error {
		data, err := json.Marshal(artifact{
			UID:        uid,
			RawText:    rawText,
			Result:     result,
			AnalyzedAt: analyzedAt,
		})
		if err != nil {
			return err
		}
		return a.archive.Put(ctx, key, "application/json", data)
	})
}
