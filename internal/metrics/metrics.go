// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers HTTP and domain metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	savesTotal      prometheus.Counter
	saveConflicts   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "happyhour_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "happyhour_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happyhour_listing_cache_hits_total",
			Help: "Listing cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happyhour_listing_cache_misses_total",
			Help: "Listing cache misses",
		}),
		savesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happyhour_interest_saves_total",
			Help: "Successful interest saves",
		}),
		saveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "happyhour_interest_save_conflicts_total",
			Help: "Interest saves rejected as duplicates",
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.cacheHits,
		c.cacheMisses,
		c.savesTotal,
		c.saveConflicts,
	)

	return c
}

// RecordCacheHit records a listing cache hit.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss records a listing cache miss.
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// RecordSave records a successful interest save.
func (c *Collector) RecordSave() {
	c.savesTotal.Inc()
}

// RecordSaveConflict records a duplicate-save rejection.
func (c *Collector) RecordSaveConflict() {
	c.saveConflicts.Inc()
}

// statusWriter captures the response status for metric labels.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status != 0 {
		return
	}
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

// Middleware records request counts and latency. The route label collapses
// path parameters so ids don't explode label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		route := normalizeRoute(r.URL.Path)
		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		c.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// normalizeRoute collapses path parameters to placeholders.
func normalizeRoute(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/happy-hours/") && path != "/api/happy-hours/":
		return "/api/happy-hours/{id}"
	case strings.HasPrefix(path, "/api/interests/") && path != "/api/interests/":
		return "/api/interests/{id}"
	default:
		return path
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
