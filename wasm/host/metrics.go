package host

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts contract invocations by contract label, entry point and outcome.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spectra",
			Subsystem: "contract",
			Name:      "calls_total",
			Help:      "Contract entry point invocations.",
		}, []string{"contract", "entry", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spectra",
			Subsystem: "contract",
			Name:      "call_duration_seconds",
			Help:      "Time spent inside a contract entry point.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"contract", "entry"}),
	}
}

func (m *Metrics) observe(contract, entry string, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(contract, entry, result).Inc()
	m.duration.WithLabelValues(contract, entry).Observe(took.Seconds())
}
