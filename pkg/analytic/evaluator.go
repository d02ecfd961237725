package analytic

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/cluso-attacktree/pkg/logging"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/tracing"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Evaluator runs Evaluate with logging, metrics and tracing attached.
type Evaluator struct {
	logger  logging.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer
}

// NewEvaluator creates an evaluator. A nil logger discards output and a nil
// metrics registry disables recording.
func NewEvaluator(logger logging.Logger, m *metrics.Registry) *Evaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Evaluator{logger: logger, metrics: m}
}

// WithTracer sets the tracer used for evaluation spans
func (e *Evaluator) WithTracer(t trace.Tracer) *Evaluator {
	e.tracer = t
	return e
}

// Evaluate computes the signed probability of root
func (e *Evaluator) Evaluate(root *tree.Node) (float64, error) {
	return e.EvaluateContext(context.Background(), root)
}

// EvaluateContext is Evaluate with a parent context for the evaluation span
func (e *Evaluator) EvaluateContext(ctx context.Context, root *tree.Node) (float64, error) {
	if root == nil {
		return 0, tree.ShapeError("evaluate", nil, "no root node")
	}

	_, span := tracing.Tracer(e.tracer).Start(ctx, "analytic.evaluate",
		trace.WithAttributes(
			attribute.Int64("node.id", int64(root.ID)),
			attribute.String("node.name", root.Name),
		),
	)
	defer span.End()

	start := time.Now()
	p, err := Evaluate(root)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordEvaluation(err == nil, elapsed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("analytic evaluation failed",
			logging.NodeID(root.ID),
			logging.Error(err),
		)
		return 0, err
	}

	span.SetAttributes(attribute.Float64("probability", p))
	span.SetStatus(codes.Ok, "")
	e.logger.Debug("analytic evaluation complete",
		logging.NodeID(root.ID),
		logging.String("name", root.Name),
		logging.Float64("probability", p),
		logging.Latency(elapsed),
	)
	return p, nil
}
