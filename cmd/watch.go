package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angeloszaimis/uptime-client/internal/httpserver"
	"github.com/angeloszaimis/uptime-client/internal/poller"
	"github.com/angeloszaimis/uptime-client/internal/synchronizer"
)

func runWatch(ctx context.Context, a *app, inv *invocation) error {
	p, err := poller.New(a.cfg.Poll.Interval, a.cfg.Poll.Schedule, a.logger)
	if err != nil {
		return err
	}

	list := synchronizer.NewCheckerList(ctx, a.api, a.syncOptions(true)...)
	defer list.Close()
	p.Add("checkers", list)

	var detail *synchronizer.CheckerDetail
	var detailUpdates <-chan struct{}
	if inv.flags.Changed("id") {
		id, _ := inv.flags.GetInt("id")
		detail = synchronizer.NewCheckerDetail(ctx, a.api, &id, a.syncOptions(true)...)
		defer detail.Close()
		p.Add("checker_logs", detail)
		detailUpdates = detail.Updates()
	}

	addr, _ := inv.flags.GetString("metrics-addr")
	if addr == "" {
		addr = a.cfg.Metrics.Address
	}
	if addr != "" {
		srv, err := httpserver.New(addr, setupRouter(a.collector, list), a.logger)
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				a.logger.Error("Metrics server failed", slog.Any("err", err))
			}
		}()
	}

	go p.Run(ctx)

	listUpdates := list.Updates()
	for {
		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-listUpdates:
			if !ok {
				listUpdates = nil
				continue
			}
			if err := renderWatch(a, list, detail); err != nil {
				return err
			}

		case _, ok := <-detailUpdates:
			if !ok {
				detailUpdates = nil
				continue
			}
			if err := renderWatch(a, list, detail); err != nil {
				return err
			}
		}
	}
}

// renderWatch prints the current view once nothing is loading.
func renderWatch(a *app, list *synchronizer.CheckerList, detail *synchronizer.CheckerDetail) error {
	state := list.State()
	if state.Loading || (detail != nil && detail.State().Loading) {
		return nil
	}

	for route, s := range a.breakers.Stats() {
		a.logger.Debug("Circuit breaker", slog.String("route", route), slog.String("state", s.String()))
	}

	if a.out.format == formatText {
		fmt.Fprintf(a.out.w, "--- %s ---\n", timestamp())
		if state.Err != nil {
			fmt.Fprintf(a.out.w, "last refresh failed: %v\n", state.Err)
		}
	}

	views := make([]checkerView, len(state.Checkers))
	for i, c := range state.Checkers {
		views[i] = toView(c)
	}
	if err := a.out.checkers(views); err != nil {
		return err
	}

	if detail == nil {
		return nil
	}
	id := detail.State().ID
	if id == nil {
		return nil
	}
	if a.out.format == formatText {
		fmt.Fprintln(a.out.w)
	}
	return a.out.detail(buildDetail(*id, state, detail))
}
