// Package metrics defines and registers all custom Prometheus metrics for the
// task API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SigninsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "invalid" or "error"
var SigninsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_signins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SigninDuration measures sign-in latency, dominated by the bcrypt comparison.
var SigninDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_signin_duration_seconds",
		Help:      "Duration of sign-in requests including password verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// RegistrationsTotal counts sign-up attempts.
// Label:
//   - result: "success", "username_taken", "email_taken", "role_not_configured", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts bearer tokens refused by the auth middleware.
// Label:
//   - reason: "missing", "malformed", "signature" or "expired"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskOperationsTotal counts task operations.
// Labels:
//   - operation: "create", "read_all", "read_one", "update" or "delete"
//   - result: "ok", "forbidden", "not_found", "invalid" or "error"
var TaskOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_total",
		Help:      "Total number of task operations, by operation and result.",
	},
	[]string{"operation", "result"},
)
