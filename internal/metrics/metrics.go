// Package metrics exposes Prometheus collectors for the HTTP layer and the
// tasting lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition outcomes.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	transitions         *prometheus.CounterVec
	tastingDuration     prometheus.Histogram
	ratings             prometheus.Histogram
	rateLimited         prometheus.Counter
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "humidor_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "humidor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "humidor_tasting_transitions_total",
			Help: "Tasting lifecycle transitions by kind and result",
		}, []string{"transition", "result"}),
		tastingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "humidor_tasting_duration_minutes",
			Help:    "Duration of finished tastings",
			Buckets: []float64{15, 30, 45, 60, 90, 120, 180},
		}),
		ratings: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "humidor_tasting_rating",
			Help:    "Ratings given to finished tastings",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "humidor_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// RegisterGauge exposes fn as a gauge, e.g. the number of SSE clients.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer returns the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveTransition counts a start, cancel or finish attempt.
func (m *Metrics) ObserveTransition(transition string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.transitions.WithLabelValues(transition, result).Inc()
}

// ObserveFinished records the duration and rating of an archived tasting.
func (m *Metrics) ObserveFinished(durationMinutes, rating int) {
	if m == nil {
		return
	}
	m.tastingDuration.Observe(float64(durationMinutes))
	m.ratings.Observe(float64(rating))
}

// ObserveRateLimited counts a rejected request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
