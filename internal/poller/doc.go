// Package poller periodically refreshes synchronizers.
//
// Synchronizers never schedule their own fetches; a Poller drives them on
// a cron schedule, by default every ten seconds, until its context ends.
package poller
