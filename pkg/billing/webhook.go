package billing

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is a RevenueCat subscription lifecycle event tag.
type EventType string

const (
	EventInitialPurchase     EventType = "INITIAL_PURCHASE"
	EventRenewal             EventType = "RENEWAL"
	EventUncancellation      EventType = "UNCANCELLATION"
	EventNonRenewingPurchase EventType = "NON_RENEWING_PURCHASE"
	EventProductChange       EventType = "PRODUCT_CHANGE"
	EventCancellation        EventType = "CANCELLATION"
	EventExpiration          EventType = "EXPIRATION"
)

// activeEvents are the lifecycle events that assert a currently active
// entitlement set. Everything else either ends a subscription or carries
// no entitlement information.
var activeEvents = map[EventType]bool{
	EventInitialPurchase:     true,
	EventRenewal:             true,
	EventUncancellation:      true,
	EventNonRenewingPurchase: true,
	EventProductChange:       true,
}

// IsActive reports whether the event type asserts active entitlements.
func (t EventType) IsActive() bool {
	return activeEvents[t]
}

// WebhookEvent is the inner event object of a RevenueCat webhook delivery.
// Payloads are untrusted: they can arrive out of order or more than once.
type WebhookEvent struct {
	AppUserID        string    `json:"app_user_id"`
	Type             EventType `json:"type"`
	EntitlementIDs   []string  `json:"entitlement_ids"`
	EventTimestampMS int64     `json:"event_timestamp_ms"`
}

// WebhookPayload is the webhook request body envelope.
type WebhookPayload struct {
	Event WebhookEvent `json:"event"`
}

// ParseWebhook decodes and validates a webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if payload.Event.AppUserID == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing event.app_user_id", ErrInvalidPayload)
	}
	return payload.Event, nil
}

// Timestamp converts the millisecond event timestamp. The zero time is
// returned when the webhook carried no timestamp.
func (e WebhookEvent) Timestamp() time.Time {
	if e.EventTimestampMS <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.EventTimestampMS).UTC()
}

// Fingerprint identifies a delivery for duplicate suppression.
func (e WebhookEvent) Fingerprint() string {
	return fmt.Sprintf("%s:%s:%d", e.AppUserID, e.Type, e.EventTimestampMS)
}
