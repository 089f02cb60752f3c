package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const (
	UserIDHeader = "X-User-ID"

	visitorTTL      = 10 * time.Minute
	cleanupInterval = time.Minute
)

type Config struct {
	RequestsPerSecond float64
	Burst             int
}

func (c Config) Enabled() bool {
	return c.RequestsPerSecond > 0
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Middleware returns a pass-through when cfg is disabled.
func Middleware(cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	var (
		mu          sync.Mutex
		visitors    = make(map[string]*visitor)
		lastCleanup time.Time
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			key := ClientKey(r)

			mu.Lock()
			v, ok := visitors[key]
			if !ok {
				v = &visitor{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)}
				visitors[key] = v
			}
			v.lastSeen = now

			if now.Sub(lastCleanup) > cleanupInterval {
				for k, old := range visitors {
					if now.Sub(old.lastSeen) > visitorTTL {
						delete(visitors, k)
					}
				}
				lastCleanup = now
			}
			mu.Unlock()

			if !v.limiter.AllowN(now, 1) {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())))

				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller: the X-User-ID header, else the first
// X-Forwarded-For hop, else the remote address.
func ClientKey(r *http.Request) string {
	if user := strings.TrimSpace(r.Header.Get(UserIDHeader)); user != "" {
		return "user:" + user
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
