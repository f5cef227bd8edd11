// Package synchronizer keeps local copies of backend resources consistent
// with the backend.
//
// A synchronizer owns one resource: the checker list (CheckerList) or the
// log history of one checker (CheckerDetail). Every fetch runs on its own
// goroutine with its own context. Starting a new fetch cancels the pending
// one, and a response is applied only while its ticket is still the latest,
// so a slow stale response can never overwrite a newer one. Cancellation is
// silent: it never touches state and never raises a notification.
//
// Synchronizers do not poll on their own. Something external, usually a
// poller.Poller, calls Refresh.
package synchronizer
