package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	SyncTotal          *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_client_requests_total",
				Help: "Backend requests by method, route and outcome",
			},
			[]string{"method", "route", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uptime_client_request_duration_seconds",
				Help:    "Backend request durations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_client_sync_total",
				Help: "Synchronizer fetch outcomes by resource",
			},
			[]string{"resource", "outcome"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uptime_client_notifications_total",
				Help: "Notifications shown by kind",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.SyncTotal, m.NotificationsTotal)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
