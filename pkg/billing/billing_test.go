package billing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solo-knight-dev/fyllo-ai/pkg/billing"
)

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		body := `{"event":{"app_user_id":"u1","type":"RENEWAL","entitlement_ids":["Pro"],"event_timestamp_ms":1700000000000}}`
		event, err := billing.ParseWebhook([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "u1", event.AppUserID)
		assert.Equal(t, billing.EventRenewal, event.Type)
		assert.Equal(t, []string{"Pro"}, event.EntitlementIDs)
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), event.Timestamp())
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		_, err := billing.ParseWebhook([]byte(`{"event":`))
		assert.ErrorIs(t, err, billing.ErrInvalidPayload)
	})

	t.Run("missing app_user_id", func(t *testing.T) {
		t.Parallel()

		_, err := billing.ParseWebhook([]byte(`{"event":{"type":"RENEWAL"}}`))
		assert.ErrorIs(t, err, billing.ErrInvalidPayload)
	})
}

func TestEventType_IsActive(t *testing.T) {
	t.Parallel()

	active := []billing.EventType{
		billing.EventInitialPurchase,
		billing.EventRenewal,
		billing.EventUncancellation,
		billing.EventNonRenewingPurchase,
		billing.EventProductChange,
	}
	for _, et := range active {
		assert.True(t, et.IsActive(), string(et))
	}

	assert.False(t, billing.EventCancellation.IsActive())
	assert.False(t, billing.EventExpiration.IsActive())
	assert.False(t, billing.EventType("TEST").IsActive())
}

func TestWebhookEvent_Fingerprint(t *testing.T) {
	t.Parallel()

	a := billing.WebhookEvent{AppUserID: "u1", Type: billing.EventRenewal, EventTimestampMS: 42}
	b := billing.WebhookEvent{AppUserID: "u1", Type: billing.EventRenewal, EventTimestampMS: 42}
	c := billing.WebhookEvent{AppUserID: "u1", Type: billing.EventRenewal, EventTimestampMS: 43}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestWebhookEvent_TimestampZero(t *testing.T) {
	t.Parallel()

	event := billing.WebhookEvent{AppUserID: "u1"}
	assert.True(t, event.Timestamp().IsZero())
}

func TestSubscriber_ActiveEntitlements(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	sub := billing.Subscriber{Entitlements: map[string]billing.Entitlement{
		"Pro":      {ExpiresDate: &future},
		"Elite":    {ExpiresDate: &past},
		"Lifetime": {ExpiresDate: nil},
	}}

	active := sub.ActiveEntitlements(now)
	assert.Equal(t, map[string]time.Time{"Pro": future}, active)
}

func TestNewRESTClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := billing.NewRESTClient(billing.Config{})
	assert.ErrorIs(t, err, billing.ErrInvalidConfig)
}

func TestRESTClient_GetSubscriber(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribers/u1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"subscriber":{"entitlements":{"Pro":{"expires_date":"2099-01-01T00:00:00Z"}}}}`))
	}))
	defer srv.Close()

	client, err := billing.NewRESTClient(billing.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	sub, err := client.GetSubscriber(context.Background(), "u1")
	require.NoError(t, err)
	require.Contains(t, sub.Entitlements, "Pro")
	assert.Equal(t, 2099, sub.Entitlements["Pro"].ExpiresDate.Year())
}

func TestRESTClient_GetSubscriberUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := billing.NewRESTClient(billing.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	_, err = client.GetSubscriber(context.Background(), "u1")
	assert.ErrorIs(t, err, billing.ErrRequestFailed)
}
