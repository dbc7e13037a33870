package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contact submission outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeInvalid        = "invalid"
	OutcomeBotRejected    = "bot_rejected"
	OutcomeDeliveryFailed = "delivery_failed"
)

// Metrics holds the collectors for the service. A nil *Metrics records
// nothing, so components can take it as an optional dependency.
type Metrics struct {
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDuration     *prometheus.HistogramVec
	contactSubmissionsTotal *prometheus.CounterVec
	emailSendDuration       *prometheus.HistogramVec
	redeliveriesTotal       *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status_code"},
		),
		contactSubmissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_submissions_total",
				Help: "Total number of contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		emailSendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "email_send_duration_seconds",
				Help:    "Time spent waiting on the email provider",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "status"},
		),
		redeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_delivery_redeliveries_total",
				Help: "Redelivery attempts of archived submissions",
			},
			[]string{"status"}, // delivered, failed
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordContactSubmission counts one submission by outcome
func (m *Metrics) RecordContactSubmission(outcome string) {
	if m == nil {
		return
	}
	m.contactSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordEmailSend records one provider call
func (m *Metrics) RecordEmailSend(provider string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.emailSendDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

// RecordRedelivery counts one redelivery attempt
func (m *Metrics) RecordRedelivery(delivered bool) {
	if m == nil {
		return
	}
	status := "failed"
	if delivered {
		status = "delivered"
	}
	m.redeliveriesTotal.WithLabelValues(status).Inc()
}
