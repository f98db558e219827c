// Package email sends transactional emails through Postmark.
//
// The EmailSender interface is the capability every feature depends on;
// NewPostmarkClient provides the production implementation and NewDevSender
// writes emails to disk for local development. Template builders for the
// application's transactional emails live in templates.go.
package email
