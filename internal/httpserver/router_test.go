package httpserver_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/uptime-client/internal/httpserver"
	"github.com/angeloszaimis/uptime-client/internal/metrics"
)

var _ = Describe("Router", func() {
	var (
		collector *metrics.Collector
		healthErr error
		server    *httptest.Server
	)

	BeforeEach(func() {
		healthErr = nil
		collector = metrics.NewCollector(8, slog.New(slog.NewTextHandler(io.Discard, nil)))
		collector.Metrics().SyncTotal.WithLabelValues("checkers", metrics.OutcomeApplied).Inc()

		server = httptest.NewServer(httpserver.NewRouter(collector.Handler(), func() error { return healthErr }))
	})

	AfterEach(func() {
		server.Close()
	})

	It("exposes Prometheus metrics", func() {
		resp, err := http.Get(server.URL + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring(`uptime_client_sync_total{outcome="applied",resource="checkers"} 1`))
	})

	It("reports healthy while the last sync succeeded", func() {
		resp, err := http.Get(server.URL + "/healthz")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"status":"ok"}`))
	})

	It("reports degraded after a failed sync", func() {
		healthErr = errors.New("backend unavailable")

		resp, err := http.Get(server.URL + "/healthz")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(body).To(MatchJSON(`{"status":"degraded","error":"backend unavailable"}`))
	})

	It("returns 404 for unknown paths", func() {
		resp, err := http.Get(server.URL + "/nope")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
