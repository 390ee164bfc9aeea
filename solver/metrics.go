package solver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calibration outcomes recorded by Metrics.
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
	StatusIllPosed     = "ill_posed"
	StatusFailed       = "failed"
)

// Metrics holds the Prometheus collectors of the solver.
type Metrics struct {
	Calibrations *prometheus.CounterVec
	Iterations   prometheus.Histogram
	Duration     prometheus.Histogram
	ResidualNorm prometheus.Gauge
}

// NewMetrics creates the solver collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calibrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ratecal_calibrations_total",
			Help: "Total number of calibration runs by final status",
		}, []string{"status"}),
		Iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ratecal_calibration_iterations",
			Help:    "Pricing passes per calibration run",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ratecal_calibration_duration_seconds",
			Help:    "Wall time of calibration runs",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		ResidualNorm: f.NewGauge(prometheus.GaugeOpts{
			Name: "ratecal_calibration_residual_norm",
			Help: "Residual norm at the end of the last calibration run",
		}),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(status string, iterations int, d time.Duration, residualNorm float64) {
	if m == nil {
		return
	}
	m.Calibrations.WithLabelValues(status).Inc()
	m.Iterations.Observe(float64(iterations))
	m.Duration.Observe(d.Seconds())
	m.ResidualNorm.Set(residualNorm)
}
