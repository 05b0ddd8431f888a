package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	tokensTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qwend",
			Subsystem: "generate",
			Name:      "tokens_total",
			Help:      "Total tokens emitted across all generations",
		},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qwend",
			Subsystem: "generate",
			Name:      "generations_total",
			Help:      "Completed generations by finish reason",
		},
		[]string{"finish_reason"},
	)

	tokensPerSecond = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qwend",
			Subsystem: "generate",
			Name:      "tokens_per_second",
			Help:      "Throughput of the most recent stats sample",
		},
	)
)

func init() {
	prometheus.MustRegister(tokensTotal, generationsTotal, tokensPerSecond)
}
