package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.WalksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attacktree_walks_total",
			Help: "Total number of simulated attack walks by outcome",
		},
		[]string{"outcome"},
	)

	r.NodeStopsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attacktree_node_stops_total",
			Help: "Walks stopped at a node, by the kind of the stopping node",
		},
		[]string{"kind"},
	)

	r.CampaignsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attacktree_campaigns_total",
			Help: "Total number of simulation campaigns by status",
		},
		[]string{"status"},
	)

	r.CampaignDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attacktree_campaign_duration_seconds",
			Help:    "Wall-clock duration of simulation campaigns",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.CampaignSuccesses = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attacktree_campaign_success_ratio",
			Help: "Fraction of successful attacks in the last campaign",
		},
	)

	r.CampaignWorkers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attacktree_campaign_workers",
			Help: "Number of workers used by the last campaign",
		},
	)
}
