// Package metrics exposes Prometheus counters for the cache and the SEC client.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors used by the core packages.
type Metrics struct {
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheWriteErrors prometheus.Counter
	requests         *prometheus.CounterVec
	retries          *prometheus.CounterVec
	duration         *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sec_cache_hits_total",
			Help: "Cached SEC responses served from disk.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sec_cache_misses_total",
			Help: "Cache lookups that had to call SEC (absent, expired or unreadable).",
		}),
		cacheWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sec_cache_write_errors_total",
			Help: "Responses that could not be written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sec_http_requests_total",
			Help: "HTTP requests sent to SEC by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sec_http_retries_total",
			Help: "Retried SEC requests by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sec_http_request_duration_seconds",
			Help:    "Latency of SEC HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(m.cacheHits, m.cacheMisses, m.cacheWriteErrors, m.requests, m.retries, m.duration)
	}
	return m
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Metrics) CacheWriteError() {
	if m != nil {
		m.cacheWriteErrors.Inc()
	}
}

// Request records one HTTP round trip. status 0 means no response was received.
func (m *Metrics) Request(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(endpoint, label).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Retry records a retry caused by reason ("rate_limited" or "error").
func (m *Metrics) Retry(reason string) {
	if m != nil {
		m.retries.WithLabelValues(reason).Inc()
	}
}
