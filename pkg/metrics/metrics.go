package metrics

import (
	"io"
	"time"

	"github.com/prometheus/common/expfmt"
)

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// RecordWalk records the outcome of one simulated walk. stoppedBy is the
// kind of the node that stopped the attack and is ignored on success.
func (r *Registry) RecordWalk(succeeded bool, stoppedBy string) {
	if succeeded {
		r.WalksTotal.WithLabelValues("success").Inc()
		return
	}
	r.WalksTotal.WithLabelValues("stopped").Inc()
	r.NodeStopsTotal.WithLabelValues(stoppedBy).Inc()
}

// RecordCampaign records a finished campaign
func (r *Registry) RecordCampaign(ok bool, workers, runs, successes int, duration time.Duration) {
	r.CampaignsTotal.WithLabelValues(status(ok)).Inc()
	r.CampaignDuration.Observe(duration.Seconds())
	r.CampaignWorkers.Set(float64(workers))
	if ok && runs > 0 {
		r.CampaignSuccesses.Set(float64(successes) / float64(runs))
	}
}

// RecordEvaluation records an analytic evaluation
func (r *Registry) RecordEvaluation(ok bool, duration time.Duration) {
	r.EvaluationsTotal.WithLabelValues(status(ok)).Inc()
	r.EvaluationDuration.Observe(duration.Seconds())
}

// SetRootProbability publishes the signed root probability
func (r *Registry) SetRootProbability(p float64) {
	r.LastProbability.Set(p)
}

// RecordModelLoad records a model load and, on success, its node counts per kind
func (r *Registry) RecordModelLoad(ok bool, nodesByKind map[string]int) {
	r.ModelLoadsTotal.WithLabelValues(status(ok)).Inc()
	for kind, n := range nodesByKind {
		r.ModelNodesTotal.WithLabelValues(kind).Set(float64(n))
	}
}

// WriteText writes every gathered metric in the Prometheus text format
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
