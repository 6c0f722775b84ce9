package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		WebhookRequests,
		WebhookDuration,
	)
}

var (
	// result: ok|rejected
	// reason (rejected only): bad_signature|stale|malformed_header|bad_json|source_mismatch|missing_metadata|order_not_found|dispatch_error|module_disabled
	WebhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Count of webhook deliveries by result and bounded reason.",
		},
		[]string{"result", "reason"},
	)

	WebhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Duration of the webhook handler in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"result"},
	)
)

func IncWebhook(result, reason string) {
	WebhookRequests.WithLabelValues(norm(result), norm(reason)).Inc()
}

func ObserveWebhookDuration(result string, seconds float64) {
	WebhookDuration.WithLabelValues(norm(result)).Observe(seconds)
}
