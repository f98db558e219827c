// Package identity talks to the Google Identity Toolkit: verifying caller
// ID tokens and mirroring the subscription plan into auth custom claims so
// access rules can check it without a database read.
package identity
