package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the KYC request registry.
type Metrics struct {
	RequestsSubmitted prometheus.Counter
	RequestsDecided   *prometheus.CounterVec
	PendingRequests   prometheus.Gauge
}

// New creates and registers all KYC metrics.
func New() *Metrics {
	return &Metrics{
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_kyc_requests_submitted_total",
			Help: "Total number of KYC submissions, including resubmissions",
		}),
		RequestsDecided: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brique_kyc_requests_decided_total",
			Help: "Total number of KYC decisions by outcome",
		}, []string{"outcome"}),
		PendingRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "brique_kyc_pending_requests",
			Help: "Current number of undecided KYC requests",
		}),
	}
}

func (m *Metrics) IncrementSubmitted() {
	m.RequestsSubmitted.Inc()
	m.PendingRequests.Inc()
}

func (m *Metrics) IncrementApproved() {
	m.RequestsDecided.WithLabelValues("approved").Inc()
	m.PendingRequests.Dec()
}

// IncrementRejected records a rejection. Rejecting an already-approved
// request does not change the pending gauge.
func (m *Metrics) IncrementRejected(wasPending bool) {
	m.RequestsDecided.WithLabelValues("rejected").Inc()
	if wasPending {
		m.PendingRequests.Dec()
	}
}
