// Package metrics holds the prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nutrition_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	EatenRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_eaten_recorded_total",
		Help: "Eaten events recorded.",
	})

	FoodTotalsRecomputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_food_totals_recomputed_total",
		Help: "Food total recomputations.",
	})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutrition_realtime_connections",
		Help: "Open intake websocket connections.",
	})
)

var (
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_redis_errors_total",
		Help: "Redis command errors by command.",
	}, []string{"command"})

	LoginThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutrition_login_throttled_total",
		Help: "Login attempts rejected by the rate limiter.",
	})
)
