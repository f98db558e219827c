// Package async provides helpers for background work: futures for
// computations whose results are awaited, and fire-and-forget execution for
// best-effort side effects like notification emails.
package async
