package session

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pixelforge",
			Subsystem: "session",
			Name:      "loads_total",
			Help:      "Engine constructions by model and result",
		},
		[]string{"model", "result"},
	)

	inferenceSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pixelforge",
			Subsystem: "session",
			Name:      "inference_seconds",
			Help:      "Time spent holding the session lock per call",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, inferenceSeconds)
}
