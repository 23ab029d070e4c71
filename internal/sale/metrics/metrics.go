package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the primary sales.
type Metrics struct {
	PurchasesExecuted prometheus.Counter
	CurrencyRaised    prometheus.Counter
	CurrencyRefunded  prometheus.Counter
	CurrencyWithdrawn prometheus.Counter
	ActiveSales       prometheus.Gauge
}

// New creates and registers all sale metrics.
func New() *Metrics {
	return &Metrics{
		PurchasesExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_purchases_executed_total",
			Help: "Total successful purchases",
		}),
		CurrencyRaised: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_currency_raised_total",
			Help: "Total settlement currency captured by sales",
		}),
		CurrencyRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_currency_refunded_total",
			Help: "Total settlement currency refunded as exact change",
		}),
		CurrencyWithdrawn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brique_currency_withdrawn_total",
			Help: "Total settlement currency withdrawn by beneficiaries",
		}),
		ActiveSales: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "brique_active_sales",
			Help: "Current number of active sales",
		}),
	}
}

func (m *Metrics) RecordPurchase(cost, change uint64) {
	m.PurchasesExecuted.Inc()
	m.CurrencyRaised.Add(float64(cost))
	m.CurrencyRefunded.Add(float64(change))
}

func (m *Metrics) RecordWithdrawal(amount uint64) {
	m.CurrencyWithdrawn.Add(float64(amount))
}

func (m *Metrics) SetActive(active bool) {
	if active {
		m.ActiveSales.Inc()
	} else {
		m.ActiveSales.Dec()
	}
}
