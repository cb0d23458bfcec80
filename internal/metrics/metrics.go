// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitegigs_booking_transitions_total",
			Help: "Booking status changes applied, by operation and target status",
		},
		[]string{"operation", "to"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitegigs_webhook_events_total",
			Help: "Payment gateway webhook events by type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: processed, duplicate, ignored, failed, rejected
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitegigs_side_effect_failures_total",
			Help: "Email and in-app notification deliveries that failed",
		},
		[]string{"kind"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitegigs_rate_limit_rejections_total",
			Help: "Requests refused by the rate limiter or the lockout guard",
		},
		[]string{"preset", "reason"}, // reason: window, lockout
	)

	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitegigs_gateway_requests_total",
			Help: "Calls to the payment gateway by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ignitegigs_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
