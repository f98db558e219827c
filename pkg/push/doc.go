// Package push delivers mobile push notifications through Firebase Cloud
// Messaging's HTTP v1 API. Delivery is best-effort by design: callers tally
// failures but never treat them as fatal.
package push
