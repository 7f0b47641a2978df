package metrics

import (
	"fileforge/internal/domain/transform"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fileforge"

// Metrics collects engine counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	results       *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	solverProbes  prometheus.Histogram
	solverRounds  prometheus.Histogram
	bytesIn       prometheus.Counter
	bytesOut      prometheus.Counter
	batchDuration *prometheus.HistogramVec
	inFlight      prometheus.Gauge
}

// New registers the engine metrics with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Job results by operation and status.",
		}, []string{"operation", "status"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Warnings attached to successful results.",
		}, []string{"warning"}),
		solverProbes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "probes",
			Help:      "Trial encodes per solve.",
			Buckets:   []float64{1, 2, 4, 7, 14, 21, 28},
		}),
		solverRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "downscale_rounds",
			Help:      "Downscale rounds used per solve.",
			Buckets:   []float64{0, 1, 2, 3},
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Source bytes of successful results.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Output bytes of successful results.",
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time per batch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"operation"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Jobs currently running.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.results, m.warnings, m.solverProbes, m.solverRounds,
		m.bytesIn, m.bytesOut, m.batchDuration, m.inFlight,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSolve records one solver run.
func (m *Metrics) ObserveSolve(probes, rounds int) {
	if m == nil {
		return
	}
	m.solverProbes.Observe(float64(probes))
	m.solverRounds.Observe(float64(rounds))
}

// JobStarted and JobFinished track the in-flight gauge.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

// ObserveBatch records every result of a finished batch.
func (m *Metrics) ObserveBatch(manifest *transform.BatchManifest) {
	if m == nil || manifest == nil {
		return
	}
	op := string(manifest.Operation)
	for _, r := range manifest.Results {
		m.results.WithLabelValues(op, string(r.Status)).Inc()
		for _, w := range r.Warnings {
			m.warnings.WithLabelValues(string(w)).Inc()
		}
	}
	m.bytesIn.Add(float64(manifest.BytesIn()))
	m.bytesOut.Add(float64(manifest.BytesOut()))
	m.batchDuration.WithLabelValues(op).Observe(manifest.FinishedAt.Sub(manifest.StartedAt).Seconds())
}
