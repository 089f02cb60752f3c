package fallback

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moviebooking/docs-gateway/internal/circuitbreaker"
)

type Health struct {
	Status          string                          `json:"status"`
	Message         string                          `json:"message"`
	Timestamp       time.Time                       `json:"timestamp"`
	FallbacksActive bool                            `json:"fallbacksActive"`
	Breakers        map[string]circuitbreaker.State `json:"breakers"`
}

type Handler struct {
	breakers *circuitbreaker.Registry
	logger   *slog.Logger
}

func NewHandler(breakers *circuitbreaker.Registry, logger *slog.Logger) *Handler {
	return &Handler{breakers: breakers, logger: logger}
}

// Service serves /fallback/{service}.
func (h *Handler) Service(w http.ResponseWriter, r *http.Request) {
	Write(w, r, chi.URLParam(r, "service"), h.logger)
}

// Health serves /fallback/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:    "UP",
		Message:   "All services are reachable",
		Timestamp: time.Now().UTC(),
		Breakers:  h.breakers.Stats(),
	}

	if !h.breakers.AllClosed() {
		health.Status = "DEGRADED"
		health.Message = "Some services are unavailable, operating in fallback mode"
		health.FallbacksActive = true
	}

	writeJSON(w, http.StatusOK, health)
}
