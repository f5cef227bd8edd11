package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/angeloszaimis/uptime-client/config"
	"github.com/angeloszaimis/uptime-client/internal/account"
	"github.com/angeloszaimis/uptime-client/internal/api"
	"github.com/angeloszaimis/uptime-client/internal/circuitbreaker"
	"github.com/angeloszaimis/uptime-client/internal/creation"
	"github.com/angeloszaimis/uptime-client/internal/metrics"
	"github.com/angeloszaimis/uptime-client/internal/notify"
	"github.com/angeloszaimis/uptime-client/internal/session"
	"github.com/angeloszaimis/uptime-client/internal/synchronizer"
	"github.com/angeloszaimis/uptime-client/internal/transport"
	"github.com/angeloszaimis/uptime-client/pkg/logger"
)

const metricsBufferSize = 256

// app wires the client for one command invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	session   *session.Session
	collector *metrics.Collector
	breakers  *circuitbreaker.Registry
	api       *api.Client
	notifier  *notify.Dispatcher
	accounts  *account.Workflow
	creator   *creation.Workflow
	out       *printer

	stop context.CancelFunc
}

func newApp(ctx context.Context, g globals, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter(stderr, cfg.Logging.Level, false, cfg.Environment)

	store, err := session.OpenLevelStore(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(store, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	runCtx, stop := context.WithCancel(ctx)

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(runCtx)

	breakers := circuitbreaker.NewRegistry(cfg.API.Breaker.Threshold, cfg.API.Breaker.ResetTimeout)

	client, err := transport.New(cfg.API.BaseURL, sess, log,
		transport.WithHTTPClient(transport.NewHTTPClient(cfg.API.Timeout)),
		transport.WithErrorField(cfg.API.ErrorField),
		transport.WithBreakers(breakers),
		transport.WithCollector(collector),
	)
	if err != nil {
		stop()
		sess.Close()
		return nil, err
	}
	backend := api.New(client)

	notifier := notify.New(log,
		notify.WithDuration(cfg.Notify.Duration),
		notify.WithQueueSize(cfg.Notify.QueueSize),
		notify.WithSink(consoleSink{w: stderr}),
		notify.WithCollector(collector),
	)

	return &app{
		cfg:       cfg,
		logger:    log,
		session:   sess,
		collector: collector,
		breakers:  breakers,
		api:       backend,
		notifier:  notifier,
		accounts:  account.New(backend, sess, notifier, log),
		creator:   creation.New(backend, notifier, log),
		out:       &printer{w: stdout, format: g.output, period: cfg.Checker},
		stop:      stop,
	}, nil
}

// syncOptions configures synchronizers. One-shot commands report errors
// themselves; long-running views surface them as toasts.
func (a *app) syncOptions(toastErrors bool) []synchronizer.Option {
	opts := []synchronizer.Option{
		synchronizer.WithLogger(a.logger),
		synchronizer.WithCollector(a.collector),
	}
	if toastErrors {
		opts = append(opts, synchronizer.WithNotifier(a.notifier))
	}
	return opts
}

func (a *app) close() {
	a.notifier.Close()
	a.stop()
	if err := a.session.Close(); err != nil {
		a.logger.Warn("Failed to close session store", slog.Any("err", err))
	}
}
