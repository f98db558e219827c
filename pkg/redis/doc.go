// Package redis provides a configured Redis client with connection
// retries and a healthcheck helper.
package redis
