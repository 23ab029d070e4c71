package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the asset ledgers.
type Metrics struct {
	SharesMinted      prometheus.Counter
	SharesBurned      prometheus.Counter
	TransfersExecuted prometheus.Counter
	InvariantRejects  *prometheus.CounterVec
	PausedAssets      prometheus.Gauge
}

// New creates and registers all asset metrics.
func New() *Metrics {
	return &Metrics{
		SharesMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_shares_minted_total",
			Help: "Total share units minted across all assets",
		}),
		SharesBurned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_shares_burned_total",
			Help: "Total share units burned across all assets",
		}),
		TransfersExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_transfers_executed_total",
			Help: "Total successful share transfers",
		}),
		InvariantRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brique_asset_invariant_rejects_total",
			Help: "Mutations rejected by a ledger invariant, by reason",
		}, []string{"reason"}),
		PausedAssets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "brique_paused_assets",
			Help: "Current number of paused asset ledgers",
		}),
	}
}

func (m *Metrics) AddMinted(amount uint64) {
	m.SharesMinted.Add(float64(amount))
}

func (m *Metrics) AddBurned(amount uint64) {
	m.SharesBurned.Add(float64(amount))
}

func (m *Metrics) IncrementTransfers() {
	m.TransfersExecuted.Inc()
}

func (m *Metrics) IncrementInvariantReject(reason string) {
	m.InvariantRejects.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.PausedAssets.Inc()
	} else {
		m.PausedAssets.Dec()
	}
}
