package backend

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"
)

// Backend is one instance of a documented upstream service.
type Backend struct {
	url               *url.URL
	weight            int
	proxy             *httputil.ReverseProxy
	mutex             sync.Mutex
	isHealthy         bool
	activeConnections int
	ewmaResponseTime  time.Duration
	hasEWMA           bool
}

const ewmaAlpha = 0.2

// Hooks observe a single proxied request. They travel in the request context
// so one shared proxy can serve callers with different needs.
type Hooks struct {
	// OnResponse may replace resp.Body. A non-nil error is handed to OnError.
	OnResponse func(resp *http.Response) error
	// OnError owns the response writer when the upstream round trip fails.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

type hooksKey struct{}

// WithHooks returns a context carrying h for the proxy of any Backend.
func WithHooks(ctx context.Context, h Hooks) context.Context {
	return context.WithValue(ctx, hooksKey{}, h)
}

func hooksFrom(ctx context.Context) Hooks {
	h, _ := ctx.Value(hooksKey{}).(Hooks)
	return h
}

// New creates a Backend for u. Weights below 1 are raised to 1.
// The backend starts in a healthy state.
func New(u *url.URL, weight int) *Backend {
	if weight < 1 {
		weight = 1
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ModifyResponse = func(resp *http.Response) error {
		if h := hooksFrom(resp.Request.Context()); h.OnResponse != nil {
			return h.OnResponse(resp)
		}
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if h := hooksFrom(r.Context()); h.OnError != nil {
			h.OnError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}

	return &Backend{
		url:       u,
		weight:    weight,
		proxy:     proxy,
		isHealthy: true,
	}
}

// ReverseProxy returns the HTTP reverse proxy for this backend.
func (b *Backend) ReverseProxy() *httputil.ReverseProxy {
	return b.proxy
}

func (b *Backend) URL() *url.URL {
	return b.url
}

func (b *Backend) Weight() int {
	return b.weight
}

func (b *Backend) IncrementConn() {
	b.mutex.Lock()
	b.activeConnections++
	b.mutex.Unlock()
}

// DecrementConn never drops the count below zero.
func (b *Backend) DecrementConn() {
	b.mutex.Lock()
	if b.activeConnections > 0 {
		b.activeConnections--
	}
	b.mutex.Unlock()
}

func (b *Backend) ActiveConnections() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.activeConnections
}

func (b *Backend) IsHealthy() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.isHealthy
}

// SetHealthy updates the health flag and reports whether it changed.
func (b *Backend) SetHealthy(healthy bool) (changed bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.isHealthy == healthy {
		return false
	}

	b.isHealthy = healthy
	return true
}

// RecordResponse folds duration into the exponentially weighted moving
// average response time.
func (b *Backend) RecordResponse(duration time.Duration) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.hasEWMA {
		b.ewmaResponseTime = duration
		b.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	b.ewmaResponseTime = time.Duration((1-ewmaAlpha)*float64(b.ewmaResponseTime) + ewmaAlpha*float64(duration))
}

// EWMATime returns 0 until the first response is recorded.
func (b *Backend) EWMATime() time.Duration {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.hasEWMA {
		return 0
	}

	return b.ewmaResponseTime
}
