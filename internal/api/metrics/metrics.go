// Package metrics defines and registers all custom Prometheus metrics for the
// PeerRent auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "peerrent_auth"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok" or the error code (e.g. "InvalidPin", "AlreadyExists")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginCodesRequestedTotal counts login code requests.
// Label:
//   - result: "ok" or the error code (e.g. "AccountNotFound")
var LoginCodesRequestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_codes_requested_total",
		Help:      "Total number of login code requests, by result.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts combined-key verification attempts.
// Label:
//   - result: "ok" or the error code (e.g. "CodeMismatch", "PinMismatch")
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login verification attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout acknowledgements.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts acknowledged.",
	},
)

// RateLimitedTotal counts requests rejected by the attempt limiter.
// Label:
//   - scope: the limited endpoint (e.g. "request_code", "verify")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the login attempt limiter.",
	},
	[]string{"scope"},
)

// ── Notification metrics ─────────────────────────────────────────────────────

// NotificationsTotal counts login code deliveries.
// Label:
//   - result: "sent", "failed", or "dropped" (async queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of login code deliveries, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the current number of codes waiting in each delivery worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of login codes pending in each delivery worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures how long a single delivery takes.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a login code delivery to the mail transport.",
		Buckets:   prometheus.DefBuckets,
	},
)

// CircuitBreakerState reports the mail circuit breaker state (0=closed, 1=half-open, 2=open).
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open).",
	},
	[]string{"name"},
)
