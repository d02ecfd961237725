package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalyticMetrics() {
	r.EvaluationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attacktree_evaluations_total",
			Help: "Total number of analytic evaluations by status",
		},
		[]string{"status"},
	)

	r.EvaluationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attacktree_evaluation_duration_seconds",
			Help:    "Analytic evaluation duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
	)

	r.LastProbability = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attacktree_root_probability",
			Help: "Signed probability of the root from the last successful evaluation",
		},
	)
}

func (r *Registry) initModelMetrics() {
	r.ModelNodesTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "attacktree_model_nodes",
			Help: "Number of nodes in the loaded model by kind",
		},
		[]string{"kind"},
	)

	r.ModelLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attacktree_model_loads_total",
			Help: "Total number of model files loaded by status",
		},
		[]string{"status"},
	)
}
