package fakebackend

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/uptime-client/internal/checker"
)

// Probe requests every stored site once and records the outcome.
func (s *Server) Probe(ctx context.Context, client *http.Client, logger *slog.Logger) {
	for _, c := range s.Checkers() {
		status, latency := probe(ctx, client, c.URL)
		if err := s.Record(c.ID, status, latency); err != nil {
			continue
		}
		logger.Debug("Probed site",
			slog.String("site", c.URL),
			slog.String("status", string(status)),
			slog.Int64("latency_ms", latency))
	}
}

// RunProber probes all sites every interval until ctx is done.
func (s *Server) RunProber(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Prober stopped")
			return

		case <-ticker.C:
			s.Probe(ctx, client, logger)
		}
	}
}

func probe(ctx context.Context, client *http.Client, site string) (checker.Status, int64) {
	target := site
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return checker.StatusBad, checker.NoResponse
	}

	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return checker.StatusBad, checker.NoResponse
	}
	res.Body.Close()

	latency := time.Since(start).Milliseconds()
	if res.StatusCode >= 200 && res.StatusCode < 400 {
		return checker.StatusOK, latency
	}
	return checker.StatusBad, latency
}
