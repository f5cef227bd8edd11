// Package notify shows transient notifications ("toasts").
//
// A Dispatcher accepts notifications from any goroutine without blocking,
// displays them in arrival order, keeps the active ones stacked with the
// most recent on top and dismisses each one after a fixed duration.
// Display and dismissal are reported to an optional Sink.
package notify
