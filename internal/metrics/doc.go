// Package metrics records what the client does against the backend.
//
// Components emit events through a buffered channel without blocking:
//   - transport requests by method, route and outcome, with durations
//   - synchronizer outcomes (applied, stale, canceled, failed) per resource
//   - notifications by kind
//
// A single goroutine folds events into Prometheus collectors registered on a
// private registry, so several clients can live in one process. On shutdown
// the remaining events are drained.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:     metrics.EventRequestCompleted,
//		Method:   "GET",
//		Route:    "/checkers",
//		Outcome:  metrics.OutcomeOK,
//		Duration: 150 * time.Millisecond,
//	})
//
//	http.Handle("/metrics", collector.Handler())
//
// A nil *Collector is valid and discards every event.
package metrics
