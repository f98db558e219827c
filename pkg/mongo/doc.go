// Package mongo provides a configured MongoDB client with connection
// retries and a healthcheck helper.
package mongo
