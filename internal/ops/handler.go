// Package ops exposes the operational HTTP surface: liveness, Prometheus
// metrics, and the latest run report.
package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onetl/internal/pipeline"
)

// Handler serves the ops endpoints. It holds the most recent run report so
// operators can inspect the last run without reaching into the warehouse.
type Handler struct {
	logger *slog.Logger

	mu   sync.RWMutex
	last *pipeline.RunReport
}

// NewHandler creates an ops Handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// SetReport publishes the latest run report.
func (h *Handler) SetReport(report *pipeline.RunReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = report
}

// Router wires the ops routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.handleHealth)
	r.Get("/report", h.handleReport)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReport(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	report := h.last
	h.mu.RUnlock()

	if report == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run has completed yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err.Error())
	}
}
