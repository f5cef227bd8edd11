package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthFunc reports the last sync error, nil when healthy.
type HealthFunc func() error

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewRouter serves metrics at /metrics and health at /healthz.
func NewRouter(metrics http.Handler, health HealthFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", metrics)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		res := healthResponse{Status: "ok"}
		status := http.StatusOK
		if health != nil {
			if err := health(); err != nil {
				res = healthResponse{Status: "degraded", Error: err.Error()}
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(res)
	})

	return r
}
