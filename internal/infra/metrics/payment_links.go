package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentLinksTotal,
		paymentLinkDuration,
	)
}

var (
	// result: created|fetched|error
	paymentLinksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_links_total",
			Help: "Payment Link API calls by result.",
		},
		[]string{"result"},
	)

	paymentLinkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_link_request_duration_seconds",
			Help:    "Duration of Payment Link API round trips in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)
)

func IncPaymentLink(result string) {
	paymentLinksTotal.WithLabelValues(norm(result)).Inc()
}

func ObservePaymentLinkDuration(operation string, seconds float64) {
	paymentLinkDuration.WithLabelValues(norm(operation)).Observe(seconds)
}
