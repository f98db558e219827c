// Package store persists user profiles and referral audit records in MongoDB.
//
// The users collection is keyed by the auth uid. Plan changes, credit debits
// and the monthly reset all go through this package so every write that
// touches credits is in one place. The credit check runs in a transaction and
// therefore requires a replica set deployment.
package store
