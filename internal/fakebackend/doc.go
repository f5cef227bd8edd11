// Package fakebackend is an in-memory stand-in for the uptime backend's
// HTTP surface. It backs the CLI tests and scripts/backend.go, which
// serves it for local development.
package fakebackend
