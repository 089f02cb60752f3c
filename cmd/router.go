package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/catalog"
	"github.com/moviebooking/docs-gateway/internal/docsproxy"
	"github.com/moviebooking/docs-gateway/internal/fallback"
	"github.com/moviebooking/docs-gateway/internal/gatewaydoc"
	"github.com/moviebooking/docs-gateway/internal/httpserver"
	"github.com/moviebooking/docs-gateway/internal/metrics"
	"github.com/moviebooking/docs-gateway/internal/ratelimit"
	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
	"github.com/moviebooking/docs-gateway/internal/swaggerui"
)

type routes struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	ui         *swaggerui.UI
	gatewayDoc *gatewaydoc.Rendered
	proxy      *docsproxy.Handler
	fallback   *fallback.Handler
	metrics    *metrics.Collector
	logger     *slog.Logger
}

func setupRouter(rt routes) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httpserver.RequestLogger(rt.logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "UP"})
	})

	uiBase := strings.TrimRight(rt.cfg.Docs.UIPath, "/")
	index := rt.ui.IndexHandler()
	if uiBase == "" {
		router.Get("/", index)
	} else {
		router.Get(uiBase, index)
		router.Get(uiBase+"/", index)
	}
	router.Get(uiBase+"/index.html", index)
	router.Get(uiBase+swaggerui.InitializerFile, rt.ui.InitializerHandler())

	swaggerConfig := swaggerconfig.Handler(rt.catalog, rt.cfg.Docs.ConfigPath, rt.cfg.Docs.ValidatorURL)
	router.Get(rt.cfg.Docs.ConfigPath, swaggerConfig)
	router.Head(rt.cfg.Docs.ConfigPath, swaggerConfig)

	router.Get("/api-docs", rt.gatewayDoc.JSONHandler)
	router.Get("/api-docs.yaml", rt.gatewayDoc.YAMLHandler)

	router.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(ratelimit.Config{
			RequestsPerSecond: rt.cfg.RateLimit.RequestsPerSecond,
			Burst:             rt.cfg.RateLimit.Burst,
		}, rt.logger))

		for _, pattern := range []string{"/{service}/api-docs", "/{service}/api-docs/*"} {
			r.Method(http.MethodGet, pattern, rt.proxy)
			r.Method(http.MethodHead, pattern, rt.proxy)
		}
	})

	router.Get("/fallback/health", rt.fallback.Health)
	router.Get("/fallback/{service}", rt.fallback.Service)
	router.Post("/fallback/{service}", rt.fallback.Service)

	router.Handle("/metrics", rt.metrics.PrometheusHandler())
	router.Get("/metrics/snapshot", rt.metrics.Handler(rt.cfg.Strategy.Type))

	return router
}
