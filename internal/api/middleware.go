package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/humidorapp/humidor-server/internal/http/response"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/ratelimit"
)

// metricsMiddleware records request count and latency per route pattern.
// Unmatched paths share one label so scanners cannot blow up cardinality.
func metricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// rateLimitMiddleware throttles /api/ requests per caller. Authenticated
// callers are keyed by user ID, everyone else by client IP.
func rateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIP(r)
			if id, ok := identityFrom(r.Context()); ok {
				key = "user:" + id.ID
			}

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path)
				m.ObserveRateLimited()
				response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. middleware.RealIP runs first,
// so proxy headers are already applied.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
