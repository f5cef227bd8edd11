package synchronizer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/uptime-client/internal/inflight"
	"github.com/angeloszaimis/uptime-client/internal/metrics"
	"github.com/angeloszaimis/uptime-client/internal/notify"
	"github.com/angeloszaimis/uptime-client/internal/transport"
)

type Option func(*options)

type options struct {
	logger    *slog.Logger
	notifier  notify.Notifier
	collector *metrics.Collector
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithNotifier additionally surfaces fetch failures as error toasts.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithCollector(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resource is the state machine shared by the synchronizers: a value, a
// loading flag and the last error, guarded by one mutex.
type resource[T any] struct {
	name   string
	parent context.Context
	guard  inflight.Guard
	options

	mutex   sync.RWMutex
	value   T
	loading bool
	err     error
	closed  bool
	updates chan struct{}
}

func newResource[T any](ctx context.Context, name string, o options) *resource[T] {
	return &resource[T]{
		name:    name,
		parent:  ctx,
		options: o,
		updates: make(chan struct{}, 1),
	}
}

// start supersedes the pending fetch and runs fetch on a new goroutine.
// The caller must hold r.mutex.
func (r *resource[T]) start(fetch func(ctx context.Context) (T, error)) {
	if r.closed {
		return
	}

	ctx, ticket := r.guard.Begin(r.parent)
	r.loading = true
	r.signal()

	go func() {
		begin := time.Now()
		value, err := fetch(ctx)
		r.apply(ctx, ticket, value, err, time.Since(begin))
	}()
}

func (r *resource[T]) apply(ctx context.Context, ticket inflight.Ticket, value T, err error, took time.Duration) {
	r.mutex.Lock()

	if !r.closed && !r.guard.Current(ticket) {
		r.mutex.Unlock()
		r.emit(metrics.OutcomeStale, took)
		return
	}
	if r.closed || canceled(ctx, err) {
		r.mutex.Unlock()
		r.emit(metrics.OutcomeCanceled, took)
		return
	}
	r.guard.Finish(ticket)
	r.loading = false

	if err != nil {
		r.err = err
		r.signal()
		r.mutex.Unlock()

		r.logger.Warn("Sync failed",
			slog.String("resource", r.name),
			slog.Any("err", err))
		r.emit(metrics.OutcomeError, took)
		if r.notifier != nil {
			r.notifier.Show(err.Error(), notify.KindError)
		}
		return
	}

	r.value = value
	r.err = nil
	r.signal()
	r.mutex.Unlock()

	r.emit(metrics.OutcomeApplied, took)
}

// signal wakes a subscriber without blocking; pending wake-ups coalesce.
// The caller must hold r.mutex.
func (r *resource[T]) signal() {
	if r.closed {
		return
	}
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

func (r *resource[T]) close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.guard.Cancel()
	r.loading = false
	close(r.updates)
}

func (r *resource[T]) emit(outcome string, took time.Duration) {
	r.collector.Emit(metrics.MetricEvent{
		Type:     metrics.EventSyncCompleted,
		Resource: r.name,
		Outcome:  outcome,
		Duration: took,
	})
}

func canceled(ctx context.Context, err error) bool {
	if transport.IsCanceled(err) || errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(ctx.Err(), context.Canceled)
}
