package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultInterval = 10 * time.Second

// Refresher is anything that can start a new fetch without blocking.
type Refresher interface {
	Refresh()
}

type Poller struct {
	schedule string
	logger   *slog.Logger

	mutex   sync.Mutex
	targets map[string]Refresher
	names   []string
}

// New builds a poller that fires every interval, or on schedule when it is
// a non-empty cron expression.
func New(interval time.Duration, schedule string, logger *slog.Logger) (*Poller, error) {
	if schedule == "" {
		if interval <= 0 {
			interval = DefaultInterval
		}
		schedule = "@every " + interval.String()
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse poll schedule %q: %w", schedule, err)
	}

	return &Poller{
		schedule: schedule,
		logger:   logger,
		targets:  make(map[string]Refresher),
	}, nil
}

// Add registers a target under name, replacing any previous one.
func (p *Poller) Add(name string, r Refresher) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if _, ok := p.targets[name]; !ok {
		p.names = append(p.names, name)
	}
	p.targets[name] = r
}

// Remove unregisters a target.
func (p *Poller) Remove(name string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if _, ok := p.targets[name]; !ok {
		return
	}
	delete(p.targets, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// Run refreshes every target on schedule until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{p.logger}),
		cron.WithChain(cron.Recover(cronLogger{p.logger})),
	)
	if _, err := c.AddFunc(p.schedule, p.tick); err != nil {
		return fmt.Errorf("schedule poll: %w", err)
	}

	p.logger.Info("Poller started", slog.String("schedule", p.schedule))
	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	p.logger.Info("Poller stopped")
	return nil
}

func (p *Poller) tick() {
	p.mutex.Lock()
	targets := make([]Refresher, 0, len(p.names))
	for _, name := range p.names {
		targets = append(targets, p.targets[name])
	}
	p.mutex.Unlock()

	for _, t := range targets {
		t.Refresh()
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("err", err)}, keysAndValues...)...)
}
