package builtin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the library's Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	synthesized *prometheus.CounterVec
}

// NewMetrics registers the library collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aspectswrl_builtin_invocations_total",
			Help: "Built-in invocations by built-in and result (true, false, error)",
		}, []string{"builtin", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aspectswrl_builtin_duration_seconds",
			Help:    "Built-in invocation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"builtin"}),
		synthesized: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aspectswrl_entities_synthesized_total",
			Help: "Entities synthesized for unbound output variables, by entity kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observe(builtin string, ok bool, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "false"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "true"
	}
	m.invocations.WithLabelValues(builtin, result).Inc()
	m.duration.WithLabelValues(builtin).Observe(elapsed.Seconds())
}

func (m *Metrics) entitySynthesized(kind string) {
	if m == nil {
		return
	}
	m.synthesized.WithLabelValues(kind).Inc()
}
