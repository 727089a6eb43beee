// Package api exposes the order lookup endpoints over HTTP/JSON together with
// the middleware chain (request IDs, rate limiting, access logs, panic
// recovery, CORS and per-route metrics).
package api
