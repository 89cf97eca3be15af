package metrics

import (
	"strconv"
	"sync"

	"shareit/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"endpoint", "code"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "domain_events_total",
			Help:      "Booking and comment events published by the services.",
		},
		[]string{"type"},
	)

	limiterDegraded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shareit",
			Name:      "rate_limiter_degraded",
			Help:      "1 while the actor rate limiter serves from the in-memory fallback.",
		},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "rate_limited_total",
			Help:      "Requests refused by a rate limiter.",
		},
		[]string{"limiter"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, domainEvents, rateLimited, limiterDegraded)
	})
}

// IncHTTP increments the counter for an endpoint label and response code.
func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

func IncRateLimited(limiter string) {
	rateLimited.WithLabelValues(limiter).Inc()
}

func SetLimiterDegraded(degraded bool) {
	if degraded {
		limiterDegraded.Set(1)
		return
	}
	limiterDegraded.Set(0)
}

// EventHandler counts every event delivered by the bus.
func EventHandler() events.EventHandler {
	return func(event *events.Event) error {
		domainEvents.WithLabelValues(event.Type).Inc()
		return nil
	}
}
