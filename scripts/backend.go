// Backend serves an in-memory uptime backend for trying the client locally.
// It implements registration, login, logout and the checker routes, and
// probes every stored site on an interval.
//
// Usage:
//
//	go run backend.go --port 8080 --probe-interval 10s
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/angeloszaimis/uptime-client/internal/fakebackend"
	"github.com/angeloszaimis/uptime-client/internal/httpserver"
	"github.com/angeloszaimis/uptime-client/pkg/logger"
)

func main() {
	port := pflag.Int("port", 8080, "port to listen on")
	interval := pflag.Duration("probe-interval", 10*time.Second, "how often stored sites are probed")
	secret := pflag.String("secret", "dev-secret", "HMAC key for issued tokens")
	level := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	log := logger.New(*level, false, "dev")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend := fakebackend.New([]byte(*secret))
	go backend.RunProber(ctx, *interval, log)

	srv, err := httpserver.New(fmt.Sprintf(":%d", *port), backend.Router(), log)
	if err != nil {
		log.Error("Invalid address", slog.Any("err", err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("Server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
