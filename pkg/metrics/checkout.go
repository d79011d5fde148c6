package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records price verification and order submission outcomes.
type CheckoutMetrics struct {
	verifyDuration *prometheus.HistogramVec
	verifyFailures *prometheus.CounterVec
	submissions    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	verifyDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_verify_duration_seconds",
		Help:    "Duration of cart price verification in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	verifyFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_verify_failures",
		Help: "Price verification failures by reason.",
	}, []string{"reason"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions",
		Help: "Order submissions by fulfillment mode and outcome.",
	}, []string{"fulfillment", "outcome"})
	reg.MustRegister(verifyDuration, verifyFailures, submissions)
	return &CheckoutMetrics{
		verifyDuration: verifyDuration,
		verifyFailures: verifyFailures,
		submissions:    submissions,
	}
}

// ObserveVerifyDuration records how long a verification pass took.
func (c *CheckoutMetrics) ObserveVerifyDuration(outcome string, duration time.Duration) {
	if c == nil || c.verifyDuration == nil {
		return
	}
	c.verifyDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncVerifyFailure increments the failure counter for the given reason.
func (c *CheckoutMetrics) IncVerifyFailure(reason string) {
	if c == nil || c.verifyFailures == nil {
		return
	}
	c.verifyFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncSubmission increments the submission counter.
func (c *CheckoutMetrics) IncSubmission(fulfillment, outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(fulfillment), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
