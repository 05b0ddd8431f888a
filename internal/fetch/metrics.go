package fetch

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "qwend",
			Subsystem: "fetch",
			Name:      "progress",
			Help:      "Artifact download progress on the 0-100 scale",
		},
		[]string{"artifact"},
	)

	fetchBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qwend",
			Subsystem: "fetch",
			Name:      "bytes_total",
			Help:      "Total artifact bytes received",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchProgress, fetchBytesTotal)
}

// SetProgressMetric publishes a progress sample for the named artifact.
func SetProgressMetric(artifact string, percent float64) {
	if artifact == "" {
		artifact = "unspecified"
	}
	fetchProgress.WithLabelValues(artifact).Set(percent)
}
