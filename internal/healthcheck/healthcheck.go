package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/moviebooking/docs-gateway/internal/backend"
	"github.com/moviebooking/docs-gateway/internal/catalog"
	"github.com/moviebooking/docs-gateway/internal/metrics"
)

type Options struct {
	Path     string
	Interval time.Duration
	Timeout  time.Duration
}

// Start launches one HealthCheck goroutine per instance in the catalog.
func Start(
	ctx context.Context,
	cat *catalog.Catalog,
	opts Options,
	collector *metrics.Collector,
	logger *slog.Logger,
) {
	for _, svc := range cat.Services() {
		for _, b := range svc.Backends {
			go HealthCheck(ctx, svc.ID, b, opts, collector, logger)
		}
	}
}

// HealthCheck periodically sends GET <instance><opts.Path> and marks the
// instance healthy on 200. It returns when ctx is cancelled.
func HealthCheck(
	ctx context.Context,
	serviceID string,
	b *backend.Backend,
	opts Options,
	collector *metrics.Collector,
	logger *slog.Logger,
) {
	client := &http.Client{
		Timeout: opts.Timeout,
	}
	healthURL := b.URL().ResolveReference(&url.URL{Path: opts.Path}).String()
	log := logger.With(
		slog.String("service", serviceID),
		slog.String("server", b.URL().String()))

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Health check stopped")
			return

		case <-ticker.C:
			healthy := probe(ctx, client, healthURL)
			if ctx.Err() != nil {
				continue
			}
			if !b.SetHealthy(healthy) {
				continue
			}

			if healthy {
				log.Info("Server is back up")
			} else {
				log.Warn("Server is down")
			}
			collector.Emit(metrics.MetricEvent{
				Type:    metrics.EventHealthChanged,
				Service: serviceID,
				Backend: b.URL().String(),
				Healthy: healthy,
			})
		}
	}
}

func probe(ctx context.Context, client *http.Client, healthURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode == http.StatusOK
}
