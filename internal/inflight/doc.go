// Package inflight enforces "most recent request wins" for one logical
// resource.
//
// Every request takes a Ticket from the resource's Guard. Taking a ticket
// cancels the request holding the previous one, and only the holder of the
// latest ticket may apply its result. The sequence check alone is enough to
// discard stale responses; the cancellation frees the connection early.
package inflight
