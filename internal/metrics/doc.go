// Package metrics collects per-service documentation traffic metrics.
//
// Handlers emit events through a buffered channel with non-blocking sends; a
// single goroutine folds them into:
//   - request counts per service
//   - instance selection counts and health per upstream instance
//   - upstream response times with percentiles (P50, P95, P99)
//   - upstream status code distribution
//   - fallback and cache answers served while an upstream is down
//
// The same events feed Prometheus collectors on a private registry.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Service:    "movie-service",
//		Duration:   150 * time.Millisecond,
//		StatusCode: 200,
//	})
//
//	snapshot := collector.Snapshot("round-robin")
//
// Cancelling the context drains queued events before the goroutine exits.
package metrics
