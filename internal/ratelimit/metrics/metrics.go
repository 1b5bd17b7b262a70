package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected    *prometheus.CounterVec
	CheckErrors prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter by endpoint class",
		}, []string{"class"}),
		CheckErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "storefront_ratelimit_check_errors_total",
			Help: "Limiter failures; the request is let through",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	if m != nil {
		m.Rejected.WithLabelValues(class).Inc()
	}
}

func (m *Metrics) IncrementCheckErrors() {
	if m != nil {
		m.CheckErrors.Inc()
	}
}
