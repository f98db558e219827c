package provision_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/solo-knight-dev/fyllo-ai/pkg/email"
	"github.com/solo-knight-dev/fyllo-ai/store"
	"github.com/solo-knight-dev/fyllo-ai/svc/provision"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) EnsureDefaults(ctx context.Context, uid string, d store.Defaults) error {
	args := m.Called(ctx, uid, d)
	return args.Error(0)
}

func (m *mockStore) AwardReferral(ctx context.Context, inviterID string, reward int) (*store.User, error) {
	args := m.Called(ctx, inviterID, reward)
	if u := args.Get(0); u != nil {
		return u.(*store.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) AppendReferral(ctx context.Context, ref *store.Referral) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

type mockClaims struct {
	mock.Mock
}

func (m *mockClaims) SetPlanClaim(ctx context.Context, userID, plan string) error {
	args := m.Called(ctx, userID, plan)
	return args.Error(0)
}

// recordingMailer collects emails across goroutines so tests can wait for
// fire-and-forget sends.
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	ch   chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{ch: make(chan struct{}, 10)}
}

func (r *recordingMailer) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	r.mu.Lock()
	r.sent = append(r.sent, params)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func (r *recordingMailer) waitFor(t *testing.T, n int) []email.SendEmailParams {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for email %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.SendEmailParams(nil), r.sent...)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleUserCreated_NoReferral(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	st.On("EnsureDefaults", mock.Anything, "u1", store.Defaults{
		Email:   "new@example.com",
		Name:    "Alice",
		Photo:   "",
		Plan:    "free",
		Credits: 10,
	}).Return(nil)
	claims.On("SetPlanClaim", mock.Anything, "u1", "free").Return(nil)

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{ID: "u1", Email: "new@example.com", Name: "Alice"})

	sent := mailer.waitFor(t, 1)
	assert.Equal(t, "new@example.com", sent[0].SendTo)

	st.AssertExpectations(t)
	claims.AssertExpectations(t)
	st.AssertNotCalled(t, "AwardReferral", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleUserCreated_WithReferral(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	inviter := &store.User{ID: "inviter1", Email: "inviter@example.com", ReferralCount: 3}
	st.On("AwardReferral", mock.Anything, "inviter1", 20).Return(inviter, nil)
	st.On("AppendReferral", mock.Anything, mock.MatchedBy(func(ref *store.Referral) bool {
		return ref.InviterID == "inviter1" &&
			ref.InviteeID == "u2" &&
			ref.InviteeEmail == "new@example.com" &&
			ref.RewardAmount == 20 &&
			ref.Status == "completed" &&
			ref.Type == "dual_reward" &&
			ref.ID != ""
	})).Return(nil)
	st.On("EnsureDefaults", mock.Anything, "u2", mock.MatchedBy(func(d store.Defaults) bool {
		return d.Credits == 30 && d.Plan == "free"
	})).Return(nil)
	claims.On("SetPlanClaim", mock.Anything, "u2", "free").Return(nil)

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{
		ID:         "u2",
		Email:      "new@example.com",
		Name:       "Bob",
		ReferredBy: "inviter1",
	})

	sent := mailer.waitFor(t, 2)
	recipients := []string{sent[0].SendTo, sent[1].SendTo}
	assert.Contains(t, recipients, "inviter@example.com")
	assert.Contains(t, recipients, "new@example.com")

	st.AssertExpectations(t)
	claims.AssertExpectations(t)
}

func TestHandleUserCreated_UnknownInviterSkipsReward(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	st.On("AwardReferral", mock.Anything, "ghost", 20).Return(nil, store.ErrUserNotFound)
	st.On("EnsureDefaults", mock.Anything, "u3", mock.MatchedBy(func(d store.Defaults) bool {
		return d.Credits == 10
	})).Return(nil)
	claims.On("SetPlanClaim", mock.Anything, "u3", "free").Return(nil)

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{ID: "u3", Email: "c@example.com", ReferredBy: "ghost"})

	mailer.waitFor(t, 1)

	st.AssertExpectations(t)
	st.AssertNotCalled(t, "AppendReferral", mock.Anything, mock.Anything)
}

func TestHandleUserCreated_ReferralStorageFailureAborts(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	st.On("AwardReferral", mock.Anything, "inviter1", 20).Return(nil, errors.New("boom"))

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{ID: "u4", ReferredBy: "inviter1"})

	st.AssertNotCalled(t, "EnsureDefaults", mock.Anything, mock.Anything, mock.Anything)
	claims.AssertNotCalled(t, "SetPlanClaim", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleUserCreated_DefaultsFailureSkipsClaims(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	st.On("EnsureDefaults", mock.Anything, "u5", mock.Anything).Return(errors.New("db down"))

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{ID: "u5", Email: "e@example.com"})

	claims.AssertNotCalled(t, "SetPlanClaim", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleUserCreated_DefaultName(t *testing.T) {
	t.Parallel()

	st := new(mockStore)
	claims := new(mockClaims)
	mailer := newRecordingMailer()

	st.On("EnsureDefaults", mock.Anything, "u6", mock.MatchedBy(func(d store.Defaults) bool {
		return d.Name == "New User"
	})).Return(nil)
	claims.On("SetPlanClaim", mock.Anything, "u6", "free").Return(nil)

	p := provision.New(st, claims, mailer, discard())
	p.HandleUserCreated(context.Background(), &store.User{ID: "u6"})

	st.AssertExpectations(t)
}
