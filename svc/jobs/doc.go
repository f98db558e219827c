// Package jobs holds the scheduled maintenance work: the monthly credit
// reset and the weekly tax-deadline notification scan. Both jobs page through
// the user collection in fixed-size batches and treat individual failures as
// log lines, not reasons to stop.
package jobs
