package docsproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moviebooking/docs-gateway/internal/backend"
	"github.com/moviebooking/docs-gateway/internal/catalog"
	"github.com/moviebooking/docs-gateway/internal/circuitbreaker"
	"github.com/moviebooking/docs-gateway/internal/doccache"
	"github.com/moviebooking/docs-gateway/internal/fallback"
	"github.com/moviebooking/docs-gateway/internal/metrics"
)

const (
	BackendHeader = "X-Backend-Server"
	SourceHeader  = "X-Docs-Source"

	maxDocBytes = 10 << 20
)

// recordedError marks a rejected upstream response whose outcome the
// breaker has already seen.
type recordedError struct {
	err error
}

func (e *recordedError) Error() string { return e.err.Error() }
func (e *recordedError) Unwrap() error { return e.err }

type Handler struct {
	catalog  *catalog.Catalog
	breakers *circuitbreaker.Registry
	cache    *doccache.Cache
	metrics  *metrics.Collector
	logger   *slog.Logger
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func New(
	cat *catalog.Catalog,
	breakers *circuitbreaker.Registry,
	cache *doccache.Cache,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:  cat,
		breakers: breakers,
		cache:    cache,
		metrics:  collector,
		logger:   logger,
	}
}

// ServeHTTP expects the chi URL parameters "service" and, for nested
// documents, "*".
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "service")
	rest := chi.URLParam(r, "*")

	svc, ok := h.catalog.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown service "+id)
		return
	}

	h.metrics.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived, Service: svc.ID})

	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	defer func() {
		h.metrics.Emit(metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Service:    svc.ID,
			Duration:   time.Since(start),
			StatusCode: wrapped.statusCode,
		})
	}()

	isRoot := rest == ""
	// HEAD answers carry no body and must not replace the cached document.
	cacheable := isRoot && r.Method == http.MethodGet
	log := h.logger.With(slog.String("service", svc.ID), slog.String("path", r.URL.Path))

	breaker := h.breakers.GetBreaker(svc.ID)
	if !breaker.Allow() {
		log.Warn("Circuit open, serving fallback")
		h.serveFallback(wrapped, r, svc, isRoot)
		return
	}

	_, next, err := h.catalog.Reserve(svc.ID)
	if err != nil {
		breaker.RecordFailure()
		log.Warn("No healthy backends available", slog.Any("error", err))
		h.serveFallback(wrapped, r, svc, isRoot)
		return
	}
	defer next.DecrementConn()

	h.metrics.Emit(metrics.MetricEvent{
		Type:    metrics.EventBackendSelected,
		Service: svc.ID,
		Backend: next.URL().String(),
	})

	hooks := backend.Hooks{
		OnResponse: func(resp *http.Response) error {
			if resp.StatusCode >= http.StatusInternalServerError {
				breaker.RecordFailure()
				return &recordedError{err: fmt.Errorf("upstream answered %d", resp.StatusCode)}
			}

			if cacheable && resp.StatusCode == http.StatusOK && isJSON(resp.Header.Get("Content-Type")) {
				if err := h.store(svc.ID, resp, log); err != nil {
					breaker.RecordFailure()
					return &recordedError{err: err}
				}
			}
			breaker.RecordSuccess()
			return nil
		},
		OnError: func(w http.ResponseWriter, r *http.Request, err error) {
			var recorded *recordedError
			switch {
			case errors.As(err, &recorded):
			case errors.Is(err, context.Canceled):
				breaker.Release()
				log.Debug("Client went away", slog.Any("error", err))
				return
			default:
				breaker.RecordFailure()
			}

			log.Warn("Upstream docs request failed",
				slog.String("backend", next.URL().String()),
				slog.Any("error", err))
			h.serveFallback(w, r, svc, isRoot)
		},
	}

	out := r.Clone(backend.WithHooks(r.Context(), hooks))
	out.URL.Path = upstreamPath(svc.DocsPath, rest)
	out.URL.RawPath = ""

	log.Debug("Forwarding to backend", slog.String("backend", next.URL().String()), slog.String("upstream_path", out.URL.Path))

	wrapped.Header().Set(BackendHeader, next.URL().String())
	next.ReverseProxy().ServeHTTP(wrapped, out)
	next.RecordResponse(time.Since(start))
}

// upstreamPath maps /{service}/api-docs to the service's docs path and
// /{service}/api-docs/rest to docsPath/rest.
func upstreamPath(docsPath, rest string) string {
	if rest == "" {
		return docsPath
	}
	return strings.TrimRight(docsPath, "/") + "/" + rest
}

// store copies the document into the cache and hands the proxy a fresh
// reader over the same bytes.
func (h *Handler) store(serviceID string, resp *http.Response, log *slog.Logger) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBytes+1))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read upstream docs: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if len(body) > maxDocBytes {
		return fmt.Errorf("upstream docs exceed %d bytes", maxDocBytes)
	}
	if len(body) == 0 {
		return nil
	}

	if err := h.cache.Put(serviceID, body, resp.Header.Get("Content-Type")); err != nil {
		log.Warn("Failed to cache docs", slog.Any("error", err))
	}
	return nil
}

func (h *Handler) serveFallback(w http.ResponseWriter, r *http.Request, svc *catalog.Service, isRoot bool) {
	if isRoot {
		entry, ok, err := h.cache.Get(svc.ID)
		if err != nil {
			h.logger.Warn("Failed to read cached docs", slog.String("service", svc.ID), slog.Any("error", err))
		}
		if ok {
			h.metrics.Emit(metrics.MetricEvent{Type: metrics.EventFallbackServed, Service: svc.ID, Source: metrics.SourceCache})

			w.Header().Set("Content-Type", entry.ContentType)
			w.Header().Set("Last-Modified", entry.StoredAt.Format(http.TimeFormat))
			w.Header().Set(SourceHeader, metrics.SourceCache)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(entry.Body)
			return
		}
	}

	h.metrics.Emit(metrics.MetricEvent{Type: metrics.EventFallbackServed, Service: svc.ID, Source: metrics.SourceFallback})
	w.Header().Set(SourceHeader, metrics.SourceFallback)
	fallback.Write(w, r, svc.ID, h.logger)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
