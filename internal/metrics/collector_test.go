package metrics_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/moviebooking/docs-gateway/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
	})

	AfterEach(func() {
		cancel()
	})

	requestsFor := func(service string) func() int64 {
		return func() int64 {
			return collector.Snapshot("round-robin").Services[service].Requests
		}
	}

	It("should process events emitted after Start", func() {
		collector.Start(ctx)
		collector.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived, Service: "user-service"})
		collector.Emit(metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Service:    "user-service",
			Duration:   40 * time.Millisecond,
			StatusCode: 200,
		})

		Eventually(requestsFor("user-service")).Should(Equal(int64(1)))
		Eventually(func() time.Duration {
			return collector.Snapshot("round-robin").Services["user-service"].AvgResponse
		}).Should(Equal(40 * time.Millisecond))
	})

	It("should record health and fallback events", func() {
		collector.Start(ctx)
		collector.Emit(metrics.MetricEvent{
			Type:    metrics.EventHealthChanged,
			Service: "movie-service",
			Backend: "http://movie-1:8082",
			Healthy: true,
		})
		collector.Emit(metrics.MetricEvent{
			Type:    metrics.EventFallbackServed,
			Service: "movie-service",
			Source:  metrics.SourceCache,
		})

		Eventually(func() map[string]int64 {
			return collector.Snapshot("round-robin").Services["movie-service"].Fallbacks
		}).Should(HaveKeyWithValue("cache", int64(1)))
		Expect(collector.Snapshot("round-robin").Services["movie-service"].Backends["http://movie-1:8082"].Healthy).To(BeTrue())
	})

	It("should drain queued events on cancellation", func() {
		for i := 0; i < 5; i++ {
			collector.EventChannel() <- metrics.MetricEvent{Type: metrics.EventRequestReceived, Service: "booking-service"}
		}
		cancel()
		collector.Start(ctx)

		Eventually(requestsFor("booking-service")).Should(Equal(int64(5)))
	})

	It("should drop events instead of blocking when the buffer is full", func() {
		small := metrics.NewCollector(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				small.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived, Service: "ticket-service"})
			}
		}()
		Eventually(done).Should(BeClosed())
	})

	It("should ignore events on a nil collector", func() {
		var nilCollector *metrics.Collector
		Expect(func() {
			nilCollector.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived})
		}).NotTo(Panic())
	})

	Describe("HTTP handlers", func() {
		BeforeEach(func() {
			collector.Start(ctx)
			collector.Emit(metrics.MetricEvent{Type: metrics.EventRequestReceived, Service: "payment-service"})
			collector.Emit(metrics.MetricEvent{
				Type:       metrics.EventResponseCompleted,
				Service:    "payment-service",
				Duration:   10 * time.Millisecond,
				StatusCode: 200,
			})
			Eventually(func() map[int]int64 {
				return collector.Snapshot("round-robin").Services["payment-service"].StatusCodes
			}).Should(HaveKey(200))
		})

		It("should serve the JSON snapshot", func() {
			w := httptest.NewRecorder()
			collector.Handler("weighted-round-robin")(w, httptest.NewRequest(http.MethodGet, "/metrics/snapshot", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(w.Body.String()).To(ContainSubstring(`"algorithm":"weighted-round-robin"`))
			Expect(w.Body.String()).To(ContainSubstring(`"payment-service"`))
		})

		It("should serve the Prometheus exposition", func() {
			w := httptest.NewRecorder()
			collector.PrometheusHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`docsgateway_requests_total{service="payment-service"} 1`))
			Expect(w.Body.String()).To(ContainSubstring(`docsgateway_upstream_responses_total{service="payment-service",status="200"} 1`))
		})
	})
})
