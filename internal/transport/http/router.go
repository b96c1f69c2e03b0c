package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talentflow-assessments/internal/app"
)

// NewRouter wires the websocket, REST, health and metrics endpoints.
func NewRouter(service *app.AssessmentService, logger *zap.Logger, metricsEnabled bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", NewWSHandler(service, logger).ServeWS)
	NewRESTHandler(service, logger).Register(mux)
	if metricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}
