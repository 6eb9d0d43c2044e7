package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/meddoc/internal/backend"
)

// Metrics records stage latency and run outcomes. A nil *Metrics records nothing.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "meddoc",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages by backend and result.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "backend", "result"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meddoc",
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Pipeline runs by terminal outcome.",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.stageDuration, m.runs)
	return m
}

func (m *Metrics) observeStage(stage Stage, mode backend.Mode, start time.Time, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	m.stageDuration.
		WithLabelValues(string(stage), string(mode), result).
		Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordOutcome(o Outcome) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(o)).Inc()
}
