// Package schedule provides in-process periodic job execution. Jobs are plain
// functions registered with a Schedule; the Runner invokes each job when it
// becomes due and logs failures without stopping the loop.
//
// This replaces an external cron service for deployments that run as a single
// long-lived process.
package schedule
