// Package application provides application initialization and dependency wiring.
// It builds the order storage, lookup service, handlers, router, metrics
// endpoint and HTTP server, keeping the main package focused on CLI parsing,
// the startup bootstrap and shutdown orchestration.
package application
