// Package api exposes the HTTP surface: the billing webhook, the
// authenticated client endpoints and the health check. Error responses follow
// the callable convention the mobile client already speaks, a JSON body with
// a status tag and a human message.
package api
