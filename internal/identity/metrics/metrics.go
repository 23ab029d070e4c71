package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the identity registry.
type Metrics struct {
	WalletsVerified prometheus.Counter
	WalletsRevoked  prometheus.Counter
	VerifiedWallets prometheus.Gauge
}

// New creates and registers all identity metrics.
func New() *Metrics {
	return &Metrics{
		WalletsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_wallets_verified_total",
			Help: "Total number of wallet verifications",
		}),
		WalletsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_wallets_revoked_total",
			Help: "Total number of wallet revocations",
		}),
		VerifiedWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "brique_verified_wallets",
			Help: "Current number of verified wallets",
		}),
	}
}

func (m *Metrics) IncrementVerified() {
	m.WalletsVerified.Inc()
	m.VerifiedWallets.Inc()
}

func (m *Metrics) IncrementRevoked() {
	m.WalletsRevoked.Inc()
	m.VerifiedWallets.Dec()
}
