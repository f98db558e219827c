// Package subscription reconciles the stored plan with the billing provider.
//
// Two paths converge on the same plan write: webhook deliveries from the
// billing provider and a user-initiated manual sync that queries the provider
// REST API directly. Webhooks are untrusted input: they arrive out of order,
// more than once, and sometimes long after a manual sync already applied a
// newer state. A small state machine guards every webhook-driven change; the
// only path that ever downgrades a user is an explicit expiration event.
package subscription
