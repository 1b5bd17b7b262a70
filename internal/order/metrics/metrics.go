package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	id "storefront/pkg/domain"
)

// Metrics provides observability for order submission and lifecycle.
type Metrics struct {
	OrdersPlaced   prometheus.Counter
	Revenue        prometheus.Counter
	StatusChanges  *prometheus.CounterVec
	SubmitLatency  prometheus.Histogram
	SubmitFailures *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total orders persisted at checkout",
		}),
		Revenue: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_revenue_units_total",
			Help: "Sum of order totals in whole currency units",
		}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Order status writes by target status",
		}, []string{"status"}),
		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_order_submit_duration_seconds",
			Help:    "Duration of order submission including the store write",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SubmitFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_submit_failures_total",
			Help: "Rejected or failed order submissions by reason",
		}, []string{"reason"}), // reason: "empty", "validation", "store"
	}
}

func (m *Metrics) ObservePlaced(total id.Amount, d time.Duration) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.Revenue.Add(float64(total))
	m.SubmitLatency.Observe(d.Seconds())
}

func (m *Metrics) IncrementSubmitFailure(reason string) {
	if m != nil {
		m.SubmitFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementStatusChange(status string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(status).Inc()
	}
}
