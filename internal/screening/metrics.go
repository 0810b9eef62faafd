package screening

import (
	"sync"

	"github.com/hyperjump/screener/internal/embedding"
	"github.com/hyperjump/screener/internal/explain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for screening runs.
type Metrics struct {
	EmbeddingsTotal   *prometheus.CounterVec
	ExplanationsTotal *prometheus.CounterVec
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	CandidatesPerRun  prometheus.Histogram
}

// NewMetrics creates and registers the screening metrics once per process.
//
// Metrics:
//   - screener_embeddings_total{source} - vectors resolved, by cache/remote/fallback
//   - screener_explanations_total{source} - explanations, by remote/heuristic/none
//   - screener_runs_total{status} - screening runs, by ok/invalid/error
//   - screener_run_duration_seconds - end-to-end run latency
//   - screener_run_candidates - resumes per run
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			EmbeddingsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "screener_embeddings_total",
					Help: "Total number of embeddings resolved, by source",
				},
				[]string{"source"},
			),
			ExplanationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "screener_explanations_total",
					Help: "Total number of explanations produced, by source",
				},
				[]string{"source"},
			),
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "screener_runs_total",
					Help: "Total number of screening runs, by status",
				},
				[]string{"status"},
			),
			RunDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "screener_run_duration_seconds",
					Help:    "Duration of screening runs in seconds",
					Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
				},
			),
			CandidatesPerRun: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "screener_run_candidates",
					Help:    "Number of resumes screened per run",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
		}
	})
	return globalMetrics
}

// ObserveEmbedding counts a resolved embedding. Pass it to embedding.WithObserver.
func (m *Metrics) ObserveEmbedding(src embedding.Source) {
	m.EmbeddingsTotal.WithLabelValues(src.String()).Inc()
}

// ObserveExplanation counts an explanation. Pass it to explain.WithObserver.
func (m *Metrics) ObserveExplanation(src explain.Source) {
	m.ExplanationsTotal.WithLabelValues(string(src)).Inc()
}

func (m *Metrics) observeRun(status string, seconds float64, candidates int) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status == statusOK {
		m.RunDuration.Observe(seconds)
		m.CandidatesPerRun.Observe(float64(candidates))
	}
}
