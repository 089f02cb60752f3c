package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/moviebooking/docs-gateway/config"
	"github.com/moviebooking/docs-gateway/internal/catalog"
	"github.com/moviebooking/docs-gateway/internal/circuitbreaker"
	"github.com/moviebooking/docs-gateway/internal/doccache"
	"github.com/moviebooking/docs-gateway/internal/docsproxy"
	"github.com/moviebooking/docs-gateway/internal/fallback"
	"github.com/moviebooking/docs-gateway/internal/gatewaydoc"
	"github.com/moviebooking/docs-gateway/internal/healthcheck"
	"github.com/moviebooking/docs-gateway/internal/metrics"
	"github.com/moviebooking/docs-gateway/internal/swaggerconfig"
	"github.com/moviebooking/docs-gateway/internal/swaggerui"
)

const metricsBufferSize = 1024

type app struct {
	router http.Handler
	cache  *doccache.Cache
}

// newApp wires every component. Background work (metrics collection, health
// checks) stops when ctx is cancelled.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	cat, err := catalog.New(cfg.Services, cfg.Strategy.Type)
	if err != nil {
		return nil, fmt.Errorf("build service catalog: %w", err)
	}

	cache, err := doccache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if !cache.Enabled() {
		log.Info("Doc cache disabled, fallback answers only")
	}

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(ctx)

	healthcheck.Start(ctx, cat, healthcheck.Options{
		Path:     cfg.HealthCheck.Path,
		Interval: cfg.HealthCheckInterval(),
		Timeout:  cfg.HealthCheckTimeout(),
	}, collector, log)

	breakers := circuitbreaker.NewRegistry(cfg.CircuitBreaker.FailureThreshold, cfg.BreakerResetTimeout())

	uiOpts := swaggerui.Options{
		Title:      cfg.Docs.Title,
		UIPath:     cfg.Docs.UIPath,
		AssetsURL:  cfg.Docs.AssetsURL,
		ConfigPath: cfg.Docs.ConfigPath,
	}
	if cfg.Docs.Resolve == config.ResolveServer {
		client := swaggerconfig.NewClient(cfg.Docs.ConfigSource, cfg.DocsFetchTimeout())
		uiOpts.Loader = swaggerconfig.NewLoader(client, log)
	}
	ui, err := swaggerui.New(uiOpts, log)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	gatewayDoc, err := gatewaydoc.Render(gatewaydoc.Build(gatewaydoc.Paths{
		UI:            cfg.Docs.UIPath,
		SwaggerConfig: cfg.Docs.ConfigPath,
	}))
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	router := setupRouter(routes{
		cfg:        cfg,
		catalog:    cat,
		ui:         ui,
		gatewayDoc: gatewayDoc,
		proxy:      docsproxy.New(cat, breakers, cache, collector, log),
		fallback:   fallback.NewHandler(breakers, log),
		metrics:    collector,
		logger:     log,
	})

	return &app{router: router, cache: cache}, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}
