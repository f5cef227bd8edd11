// Package circuitbreaker stops the client from hammering a backend route
// that keeps failing.
//
// The transport keeps one breaker per route ("GET /checker/{id}"). A breaker
// has three states:
//
//   - CLOSED: requests pass through
//   - OPEN: the route failed too often, requests fail fast
//   - HALF-OPEN: the reset timeout elapsed, one probe request is allowed
//
// Usage:
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := registry.For("GET /checkers")
//	if !cb.Allow() {
//	    return circuitbreaker.ErrOpen
//	}
//	// make request, then cb.RecordFailure() or cb.RecordSuccess()
//
// Canceled requests and client errors say nothing about backend health and
// are recorded with neither method.
package circuitbreaker
