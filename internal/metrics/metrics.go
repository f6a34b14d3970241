package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters the API and the settlement worker maintain.
// One instance is created per process and shared through the services.
type Metrics struct {
	OrdersCreatedTotal   prometheus.CounterVec
	OrderTransitionsTotal prometheus.CounterVec
	OrdersSettledTotal   prometheus.Counter
	SettledAmountTotal   prometheus.Counter
	DisputesOpenedTotal  prometheus.Counter
	DisputesResolvedTotal prometheus.CounterVec
	BidsPlacedTotal      prometheus.Counter
	WithdrawalsResolvedTotal prometheus.CounterVec

	SweepErrorsTotal prometheus.CounterVec
	SweepDuration    prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		OrdersCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders created through checkout",
			},
			[]string{"auction"},
		),
		OrderTransitionsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_transitions_total",
				Help: "Executed order status transitions",
			},
			[]string{"from", "to", "actor"},
		),
		OrdersSettledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_settled_total",
				Help: "Orders settled and paid out to sellers",
			},
		),
		SettledAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "settled_amount_total",
				Help: "Sum of net amounts credited to seller wallets",
			},
		),
		DisputesOpenedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "disputes_opened_total",
				Help: "Disputes raised by buyers",
			},
		),
		DisputesResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "disputes_resolved_total",
				Help: "Disputes resolved, by decision",
			},
			[]string{"decision"},
		),
		BidsPlacedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bids_placed_total",
				Help: "Accepted auction bids",
			},
		),
		WithdrawalsResolvedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "withdrawals_resolved_total",
				Help: "Withdrawal requests resolved by admins, by outcome",
			},
			[]string{"outcome"},
		),
		SweepErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweep_errors_total",
				Help: "Per-order failures inside scheduler sweeps",
			},
			[]string{"sweep"},
		),
		SweepDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sweep_duration_seconds",
				Help:    "Wall time of a scheduler sweep",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"sweep"},
		),
	}
}

func (m *Metrics) RecordTransition(from, to, actor string) {
	m.OrderTransitionsTotal.WithLabelValues(from, to, actor).Inc()
}

func (m *Metrics) RecordSettlement(netAmount float64) {
	m.OrdersSettledTotal.Inc()
	m.SettledAmountTotal.Add(netAmount)
}
