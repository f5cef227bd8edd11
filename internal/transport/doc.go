// Package transport issues authenticated JSON requests against the uptime
// backend.
//
// Every request reads the bearer token fresh from a TokenSource, carries an
// X-Request-ID, and is cancelable through its context. A canceled request
// resolves to ErrCanceled, which callers treat as a silent no-op; every other
// failure is an *HTTPError carrying the backend's machine-readable message
// when one is present.
package transport
