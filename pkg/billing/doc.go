// Package billing integrates with RevenueCat, the subscription source of
// truth. It exposes the inbound webhook payload types and an outbound REST
// client for on-demand subscriber lookups.
package billing
