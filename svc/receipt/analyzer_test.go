package receipt_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/receipt"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, uid string) (*store.User, error) {
	args := m.Called(ctx, uid)
	if u := args.Get(0); u != nil {
		return u.(*store.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CheckCredits(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *mockStore) DebitScanCredit(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freeUser(uid string) *store.User {
	return &store.User{ID: uid, Plan: "free", AiCredits: 5}
}

func TestAnalyze_NoCreditsBlocksBeforeModelCall(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	ai := new(mockCompleter)

	st.On("CheckCredits", mock.Anything, "u1").Return(store.ErrNoCredits)

	a := receipt.New(st, ai, discard())
	_, err := a.Analyze(context.Background(), "u1", "STORE 12.99 TOTAL")

	assert.ErrorIs(t, err, receipt.ErrNoCredits)
	ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "DebitScanCredit", mock.Anything, mock.Anything)
}

func TestAnalyze_ShortTextRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rawText string
	}{
		{"ascii", "abc"},
		// Multi-byte runes: 12 bytes but only 4 characters, still too short.
		{"multibyte counts runes not bytes", "€€€€"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := new(mockStore)
			ai := new(mockCompleter)

			st.On("CheckCredits", mock.Anything, "u1").Return(nil)

			a := receipt.New(st, ai, discard())
			_, err := a.Analyze(context.Background(), "u1", tt.rawText)

			assert.ErrorIs(t, err, receipt.ErrTextTooShort)
			ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyze_SuccessDebitsOneCredit(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	ai := new(mockCompleter)

	st.On("CheckCredits", mock.Anything, "u1").Return(nil)
	st.On("Get", mock.Anything, "u1").Return(freeUser("u1"), nil)
	st.On("DebitScanCredit", mock.Anything, "u1").Return(nil)
	ai.On("Complete", mock.Anything, mock.Anything).Return(
		"```json\n{\"amount\": 12.99, \"merchant\": \"Office Depot\", \"category\": \"Office\"}\n```", nil)

	a := receipt.New(st, ai, discard())
	res, err := a.Analyze(context.Background(), "u1", "OFFICE DEPOT TOTAL 12.99")

	require.NoError(t, err)
	assert.Equal(t, 12.99, res.Amount)
	assert.Equal(t, "Office Depot", res.Merchant)
	assert.Empty(t, res.Error)
	assert.True(t, res.Charged())
	st.AssertCalled(t, "DebitScanCredit", mock.Anything, "u1")
}

func TestAnalyze_InvalidReceiptSkipsDebit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"zero amount", `{"amount": 0, "merchant": "Shop"}`},
		{"missing merchant", `{"amount": 9.99, "merchant": ""}`},
		{"unknown merchant", `{"amount": 9.99, "merchant": "Unknown Store"}`},
		{"none merchant", `{"amount": 9.99, "merchant": "None"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := new(mockStore)
			ai := new(mockCompleter)

			st.On("CheckCredits", mock.Anything, "u1").Return(nil)
			st.On("Get", mock.Anything, "u1").Return(freeUser("u1"), nil)
			ai.On("Complete", mock.Anything, mock.Anything).Return(tt.response, nil)

			a := receipt.New(st, ai, discard())
			res, err := a.Analyze(context.Background(), "u1", "some blurry text")

			require.NoError(t, err)
			assert.Equal(t, "no_receipt_found", res.Error)
			assert.NotEmpty(t, res.Message)
			assert.False(t, res.Charged())
			st.AssertNotCalled(t, "DebitScanCredit", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyze_ModelFailureWrapsAnalysisError(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	ai := new(mockCompleter)

	st.On("CheckCredits", mock.Anything, "u1").Return(nil)
	st.On("Get", mock.Anything, "u1").Return(freeUser("u1"), nil)
	ai.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	a := receipt.New(st, ai, discard())
	_, err := a.Analyze(context.Background(), "u1", "OFFICE DEPOT TOTAL 12.99")

	assert.ErrorIs(t, err, receipt.ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
	st.AssertNotCalled(t, "DebitScanCredit", mock.Anything, mock.Anything)
}

func TestAnalyze_MalformedModelJSON(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	ai := new(mockCompleter)

	st.On("CheckCredits", mock.Anything, "u1").Return(nil)
	st.On("Get", mock.Anything, "u1").Return(freeUser("u1"), nil)
	ai.On("Complete", mock.Anything, mock.Anything).Return("not json at all", nil)

	a := receipt.New(st, ai, discard())
	_, err := a.Analyze(context.Background(), "u1", "OFFICE DEPOT TOTAL 12.99")

	assert.ErrorIs(t, err, receipt.ErrAnalysisFailed)
	st.AssertNotCalled(t, "DebitScanCredit", mock.Anything, mock.Anything)
}

func TestAnalyze_PromptTieredByPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan string
		want string
	}{
		{"free", "Tax Assistant"},
		{"pro", "Professional Tax Auditor"},
		{"elite", "Elite Tax Strategist"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.plan, func(t *testing.T) {
			t.Parallel()

			st := new(mockStore)
			ai := new(mockCompleter)

			user := &store.User{ID: "u1", Plan: tt.plan, Jurisdiction: "UK", TaxBody: "HMRC"}
			st.On("CheckCredits", mock.Anything, "u1").Return(nil)
			st.On("Get", mock.Anything, "u1").Return(user, nil)
			st.On("DebitScanCredit", mock.Anything, "u1").Return(nil)

			var captured string
			ai.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
				captured = p
				return true
			})).Return(`{"amount": 5, "merchant": "Tesco"}`, nil)

			a := receipt.New(st, ai, discard())
			_, err := a.Analyze(context.Background(), "u1", "TESCO 5.00")

			require.NoError(t, err)
			assert.Contains(t, captured, tt.want)
			assert.Contains(t, captured, "UK")
			assert.Contains(t, captured, "HMRC")
		})
	}
}
