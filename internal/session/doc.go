// Package session owns the process-wide credential. The bearer token and the
// account email are kept in memory, persisted to a goleveldb database so they
// survive restarts, and read fresh by the transport on every request.
package session
