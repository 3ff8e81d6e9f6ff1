// Package metrics exposes the service's Prometheus collectors and the
// exposition handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecurator_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibecurator_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	recommendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecurator_recommend_total",
		Help: "Recommendation responses by pipeline method and cache outcome.",
	}, []string{"method", "cached"})

	recommendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibecurator_recommend_duration_seconds",
		Help:    "Recommendation pipeline latency by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecurator_result_cache_lookups_total",
		Help: "Result cache lookups by outcome.",
	}, []string{"outcome"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRecommend records one completed recommendation.
func ObserveRecommend(method string, cached bool, elapsed time.Duration) {
	recommendTotal.WithLabelValues(method, strconv.FormatBool(cached)).Inc()
	recommendDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// CacheHit counts a result cache hit.
func CacheHit() { cacheLookups.WithLabelValues("hit").Inc() }

// CacheMiss counts a result cache miss.
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

// Handler returns the Prometheus text exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
