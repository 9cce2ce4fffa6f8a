package provision

import "github.com/prometheus/client_golang/prometheus"

var (
	downloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pixelforge",
			Subsystem: "provision",
			Name:      "download_bytes_total",
			Help:      "Bytes written to model files",
		},
		[]string{"model"},
	)

	verifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pixelforge",
			Subsystem: "provision",
			Name:      "checksum_failures_total",
			Help:      "Downloads rejected for a SHA-256 mismatch",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(downloadBytes, verifyFailures)
}
