package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, route and status code.",
		},
		[]string{"service", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by service and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published, by type.",
		},
		[]string{"type"},
	)

	forwardRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_forward_retries_total",
			Help:      "Retries of forwarded requests after transport errors.",
		},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_rate_limited_total",
			Help:      "Requests rejected by the gateway rate limiter, by backend.",
		},
		[]string{"backend"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, domainEvents, forwardRetries, rateLimited)
	})
}

// ObserveHTTP records one handled request.
func ObserveHTTP(service, route string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(service, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(service, route).Observe(dur.Seconds())
}

func IncEvent(eventType string) {
	domainEvents.WithLabelValues(eventType).Inc()
}

func IncForwardRetry() {
	forwardRetries.Inc()
}

// IncRateLimited counts a rejection; backend is "redis" or "memory".
func IncRateLimited(backend string) {
	rateLimited.WithLabelValues(backend).Inc()
}
