// Package httpserver exposes the client's own diagnostics over HTTP:
// Prometheus metrics and a health endpoint reflecting the last sync.
package httpserver
