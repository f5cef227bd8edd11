package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestCompleted  EventType = "request_completed"
	EventSyncCompleted     EventType = "sync_completed"
	EventNotificationShown EventType = "notification_shown"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
	OutcomeApplied  = "applied"
	OutcomeStale    = "stale"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Method    string
	Route     string
	Resource  string
	Outcome   string
	Kind      string
	Duration  time.Duration
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Emit queues an event and never blocks; events are dropped when the
// buffer is full.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Debug("Metrics collector started")
	defer c.logger.Debug("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestCompleted:
		c.metrics.RequestsTotal.WithLabelValues(event.Method, event.Route, event.Outcome).Inc()
		c.metrics.RequestDuration.WithLabelValues(event.Method, event.Route).Observe(event.Duration.Seconds())

	case EventSyncCompleted:
		c.metrics.SyncTotal.WithLabelValues(event.Resource, event.Outcome).Inc()

	case EventNotificationShown:
		c.metrics.NotificationsTotal.WithLabelValues(event.Kind).Inc()

	default:
		c.logger.Debug("Dropping unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}
