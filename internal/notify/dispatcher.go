package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/uptime-client/internal/metrics"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

const (
	DefaultDuration  = 2 * time.Second
	DefaultQueueSize = 32
)

type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	ShownAt   time.Time
	expiresAt time.Time
}

// Notifier is what workflows and synchronizers depend on.
type Notifier interface {
	Show(message string, kind Kind)
}

// Sink observes notifications as they are displayed and dismissed. Calls
// come from the dispatcher goroutine, one at a time.
type Sink interface {
	Shown(n Notification)
	Dismissed(n Notification)
}

type Dispatcher struct {
	queue     chan Notification
	duration  time.Duration
	sink      Sink
	collector *metrics.Collector
	logger    *slog.Logger

	mutex  sync.RWMutex
	closed bool

	activeMutex sync.Mutex
	active      []Notification

	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*options)

type options struct {
	duration  time.Duration
	queueSize int
	sink      Sink
	collector *metrics.Collector
}

// WithDuration sets how long a notification stays active.
func WithDuration(d time.Duration) Option {
	return func(o *options) { o.duration = d }
}

// WithQueueSize bounds the number of notifications waiting for display.
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

func WithSink(s Sink) Option {
	return func(o *options) { o.sink = s }
}

func WithCollector(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// New starts a dispatcher. Close must be called to stop it.
func New(logger *slog.Logger, opts ...Option) *Dispatcher {
	o := options{duration: DefaultDuration, queueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.duration <= 0 {
		o.duration = DefaultDuration
	}
	if o.queueSize < 1 {
		o.queueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		queue:     make(chan Notification, o.queueSize),
		duration:  o.duration,
		sink:      o.sink,
		collector: o.collector,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

// Show queues a notification. It never blocks: when the queue is full the
// notification is dropped. Calls after Close are ignored.
func (d *Dispatcher) Show(message string, kind Kind) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if d.closed {
		return
	}

	n := Notification{ID: uuid.NewString(), Message: message, Kind: kind}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notification queue full, dropping notification",
			slog.String("kind", string(kind)),
			slog.String("message", message))
	}
}

// Active returns the displayed notifications, most recent first.
func (d *Dispatcher) Active() []Notification {
	d.activeMutex.Lock()
	defer d.activeMutex.Unlock()

	out := make([]Notification, len(d.active))
	copy(out, d.active)
	return out
}

// Close stops the dispatcher after displaying what is already queued and
// dismisses every active notification. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mutex.Lock()
		d.closed = true
		close(d.queue)
		d.mutex.Unlock()
	})
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var expiry <-chan time.Time
		if oldest, ok := d.oldest(); ok {
			timer.Reset(time.Until(oldest.expiresAt))
			expiry = timer.C
		}

		select {
		case n, ok := <-d.queue:
			timer.Stop()
			if !ok {
				d.dismissAll()
				return
			}
			d.display(n)

		case <-expiry:
			d.dismissOldest()
		}
	}
}

func (d *Dispatcher) display(n Notification) {
	n.ShownAt = time.Now()
	n.expiresAt = n.ShownAt.Add(d.duration)

	d.activeMutex.Lock()
	d.active = append([]Notification{n}, d.active...)
	d.activeMutex.Unlock()

	d.logger.Debug("Notification shown",
		slog.String("id", n.ID),
		slog.String("kind", string(n.Kind)))

	d.collector.Emit(metrics.MetricEvent{
		Type: metrics.EventNotificationShown,
		Kind: string(n.Kind),
	})

	if d.sink != nil {
		d.sink.Shown(n)
	}
}

// oldest is the next notification to expire. Every notification lives for
// the same duration, so that is always the bottom of the stack.
func (d *Dispatcher) oldest() (Notification, bool) {
	d.activeMutex.Lock()
	defer d.activeMutex.Unlock()

	if len(d.active) == 0 {
		return Notification{}, false
	}
	return d.active[len(d.active)-1], true
}

func (d *Dispatcher) dismissOldest() {
	d.activeMutex.Lock()
	if len(d.active) == 0 {
		d.activeMutex.Unlock()
		return
	}
	n := d.active[len(d.active)-1]
	d.active = d.active[:len(d.active)-1]
	d.activeMutex.Unlock()

	if d.sink != nil {
		d.sink.Dismissed(n)
	}
}

func (d *Dispatcher) dismissAll() {
	d.activeMutex.Lock()
	remaining := d.active
	d.active = nil
	d.activeMutex.Unlock()

	if d.sink == nil {
		return
	}
	for i := len(remaining) - 1; i >= 0; i-- {
		d.sink.Dismissed(remaining[i])
	}
}
