package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventBackendSelected   EventType = "backend_selected"
	EventResponseCompleted EventType = "response_completed"
	EventHealthChanged     EventType = "health_changed"
	EventFallbackServed    EventType = "fallback_served"
)

// Fallback sources.
const (
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

type MetricEvent struct {
	Type       EventType
	Timestamp  time.Time
	Service    string
	Backend    string
	Source     string
	Duration   time.Duration
	StatusCode int
	Healthy    bool
}

// Collector drains metric events on its own goroutine so request handlers
// never block on bookkeeping.
type Collector struct {
	eventCh  chan MetricEvent
	metrics  *Metrics
	prom     *promMetrics
	registry *prometheus.Registry
	logger   *slog.Logger
}

type promMetrics struct {
	requests   *prometheus.CounterVec
	responses  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	selections *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	healthy    *prometheus.GaugeVec
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	registry := prometheus.NewRegistry()
	prom := newPromMetrics()
	registry.MustRegister(
		prom.requests,
		prom.responses,
		prom.duration,
		prom.selections,
		prom.fallbacks,
		prom.healthy,
	)

	return &Collector{
		eventCh:  make(chan MetricEvent, bufferSize),
		metrics:  NewMetrics(),
		prom:     prom,
		registry: registry,
		logger:   logger,
	}
}

func newPromMetrics() *promMetrics {
	return &promMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsgateway_requests_total",
			Help: "Documentation requests received per service",
		}, []string{"service"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsgateway_upstream_responses_total",
			Help: "Upstream documentation responses by status code",
		}, []string{"service", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docsgateway_upstream_duration_seconds",
			Help:    "Upstream documentation response time",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsgateway_backend_selections_total",
			Help: "Times each upstream instance was chosen",
		}, []string{"service", "backend"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docsgateway_fallbacks_total",
			Help: "Requests answered without a live upstream, by source",
		}, []string{"service", "source"}),
		healthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "docsgateway_backend_healthy",
			Help: "1 when the upstream instance passes health checks",
		}, []string{"service", "backend"}),
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Emit queues event without blocking; events are dropped when the buffer is
// full. A nil Collector ignores events.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests(event.Service)
		c.prom.requests.WithLabelValues(event.Service).Inc()

	case EventBackendSelected:
		c.metrics.RecordBackendSelection(event.Service, event.Backend)
		c.prom.selections.WithLabelValues(event.Service, event.Backend).Inc()

	case EventResponseCompleted:
		c.metrics.RecordResponse(event.Service, event.Duration, event.StatusCode)
		c.prom.responses.WithLabelValues(event.Service, strconv.Itoa(event.StatusCode)).Inc()
		c.prom.duration.WithLabelValues(event.Service).Observe(event.Duration.Seconds())

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Service, event.Backend, event.Healthy)
		value := 0.0
		if event.Healthy {
			value = 1
		}
		c.prom.healthy.WithLabelValues(event.Service, event.Backend).Set(value)

	case EventFallbackServed:
		c.metrics.RecordFallback(event.Service, event.Source)
		c.prom.fallbacks.WithLabelValues(event.Service, event.Source).Inc()

	default:
		c.logger.Debug("Ignoring unknown metric event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot(algorithm string) Snapshot {
	return c.metrics.Snapshot(algorithm)
}

// Registry exposes the Prometheus registry the collector feeds.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
