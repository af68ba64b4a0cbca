package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsemetrics/collector/internal/handlers"
	"github.com/pulsemetrics/collector/internal/middleware"
)

// NewRouter constructs a ServeMux with collector routes registered.
// /events requires a bearer token; probes and metrics do not.
func NewRouter(h *handlers.EventHandler, auth *middleware.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/events", auth.RequireAuth(h.HandleEvent))

	// Health endpoints
	mux.HandleFunc("/ping", h.Ping)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
