// Package metrics holds the Prometheus instruments for the interview core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prepwise"

var (
	interviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_total",
		Help:      "Interview lifecycle transitions by event",
	}, []string{"event"})

	roundsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_completed_total",
		Help:      "Total number of round completions, including replacements",
	})

	conflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "concurrent_modifications_total",
		Help:      "Writes rejected because the stored version changed since read",
	}, []string{"entity"})

	aiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_requests_total",
		Help:      "AI generation requests by purpose and outcome",
	}, []string{"purpose", "outcome"})

	aiFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_fallbacks_total",
		Help:      "AI results replaced by a degraded default",
	}, []string{"purpose"})

	aiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_request_duration_seconds",
		Help:      "Duration of AI generation requests in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"purpose"})
)

// Interview lifecycle events.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
	EventDeleted   = "deleted"
)

// Interview records an interview lifecycle event.
func Interview(event string) {
	interviews.WithLabelValues(event).Inc()
}

// RoundCompleted records a round completion.
func RoundCompleted() {
	roundsCompleted.Inc()
}

// Conflict records a rejected optimistic write for entity.
func Conflict(entity string) {
	conflicts.WithLabelValues(entity).Inc()
}

// AIRequest records one AI call. outcome is "ok" or "error".
func AIRequest(purpose, outcome string, d time.Duration) {
	aiRequests.WithLabelValues(purpose, outcome).Inc()
	aiLatency.WithLabelValues(purpose).Observe(d.Seconds())
}

// AIFallback records an AI result that was substituted.
func AIFallback(purpose string) {
	aiFallbacks.WithLabelValues(purpose).Inc()
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
