package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the asset factory.
type Metrics struct {
	AssetsCreated prometheus.Counter
	ActiveAssets  prometheus.Gauge
}

// New creates and registers all factory metrics.
func New() *Metrics {
	return &Metrics{
		AssetsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_assets_created_total",
			Help: "Total assets deployed through the factory",
		}),
		ActiveAssets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "brique_active_assets",
			Help: "Current number of active (visible) assets",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.AssetsCreated.Inc()
	m.ActiveAssets.Inc()
}

func (m *Metrics) SetActive(active bool) {
	if active {
		m.ActiveAssets.Inc()
	} else {
		m.ActiveAssets.Dec()
	}
}
