package main

import (
	"net/http"

	"github.com/angeloszaimis/uptime-client/internal/httpserver"
	"github.com/angeloszaimis/uptime-client/internal/metrics"
	"github.com/angeloszaimis/uptime-client/internal/synchronizer"
)

// setupRouter serves the watch command's diagnostics. Health follows the
// last checker list sync.
func setupRouter(collector *metrics.Collector, list *synchronizer.CheckerList) http.Handler {
	return httpserver.NewRouter(collector.Handler(), func() error {
		return list.State().Err
	})
}
