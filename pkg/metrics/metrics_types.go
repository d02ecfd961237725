package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the engine
type Registry struct {
	// Simulation metrics
	WalksTotal        *prometheus.CounterVec
	NodeStopsTotal    *prometheus.CounterVec
	CampaignsTotal    *prometheus.CounterVec
	CampaignDuration  prometheus.Histogram
	CampaignSuccesses prometheus.Gauge
	CampaignWorkers   prometheus.Gauge

	// Analytic metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	LastProbability    prometheus.Gauge

	// Model metrics
	ModelNodesTotal *prometheus.GaugeVec
	ModelLoadsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initAnalyticMetrics()
	r.initModelMetrics()

	return r
}
