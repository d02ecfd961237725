package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/cluso-attacktree/pkg/logging"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/parallel"
	"github.com/dd0wney/cluso-attacktree/pkg/tracing"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
	"github.com/dd0wney/cluso-attacktree/pkg/validation"
)

// DefaultRuns is the number of walks a campaign performs when none is given
const DefaultRuns = 10000

// cancelCheckInterval is how many walks run between context checks
const cancelCheckInterval = 64

// ErrNoRoot is returned when a campaign is started without a tree
var ErrNoRoot = errors.New("campaign has no root node")

// Campaign runs many independent walks against one tree.
type Campaign struct {
	Runs    int
	Workers int
	Seed    uint64

	Logger  logging.Logger
	Metrics *metrics.Registry

	// Tracer receives one span per campaign; nil uses the global provider
	Tracer trace.Tracer
}

// Result summarizes a finished campaign
type Result struct {
	RunID     string
	Runs      int
	Successes int
	// Stops is the number of success-counter increments caused by this
	// campaign; Successes + Stops == Runs.
	Stops    int64
	Workers  int
	Seed     uint64
	Duration time.Duration
}

// Percentage returns the share of successful attacks in percent
func (r *Result) Percentage() float64 {
	if r.Runs == 0 {
		return 0
	}
	return 100.0 * float64(r.Successes) / float64(r.Runs)
}

// Run walks root Runs times. With one worker the walks are sequential and
// fully determined by Seed. With more workers the runs are split into one
// shard per worker, each with its own random stream derived from Seed.
// Per-node counters are atomic, so reg may be read while a campaign runs.
func (c *Campaign) Run(ctx context.Context, root *tree.Node, reg *tree.Registry) (*Result, error) {
	if root == nil {
		return nil, ErrNoRoot
	}

	runs := validation.DefaultOrInt(c.Runs, DefaultRuns)
	workers := validation.DefaultOrInt(c.Workers, 1)
	if workers > runs {
		workers = runs
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Runs:    runs,
		Workers: workers,
		Seed:    c.Seed,
	}
	logger = logger.With(logging.RunID(res.RunID), logging.Component("campaign"))

	ctx, span := tracing.Tracer(c.Tracer).Start(ctx, "simulation.campaign",
		trace.WithAttributes(
			attribute.String("campaign.run_id", res.RunID),
			attribute.Int("campaign.runs", runs),
			attribute.Int("campaign.workers", workers),
			attribute.Int64("campaign.seed", int64(c.Seed)),
			attribute.String("campaign.root", root.Name),
		),
	)
	defer span.End()

	var before int64
	if reg != nil {
		before = reg.TotalSuccesses()
	}

	timer := logging.StartTimer(logger, "campaign complete", logging.Runs(runs), logging.Int("workers", workers), logging.Seed(c.Seed))
	logger.Debug("campaign started", logging.NodeID(root.ID), logging.String("root", root.Name))

	var successes atomic.Int64
	var err error
	if workers == 1 {
		err = c.shard(ctx, root, NewSeededWalker(c.Seed, sequentialStream), runs, &successes)
	} else {
		err = c.parallel(ctx, root, runs, workers, &successes)
	}

	res.Successes = int(successes.Load())
	if reg != nil {
		res.Stops = reg.TotalSuccesses() - before
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Duration = timer.EndError(err)
		if c.Metrics != nil {
			c.Metrics.RecordCampaign(false, workers, runs, res.Successes, res.Duration)
		}
		return nil, err
	}

	res.Duration = timer.End(logging.Int("successes", res.Successes), logging.Float64("percentage", res.Percentage()))
	span.SetAttributes(
		attribute.Int("campaign.successes", res.Successes),
		attribute.Int64("campaign.stops", res.Stops),
		attribute.Float64("campaign.percentage", res.Percentage()),
	)
	span.SetStatus(codes.Ok, "")
	if c.Metrics != nil {
		c.Metrics.RecordCampaign(true, workers, runs, res.Successes, res.Duration)
	}
	return res, nil
}

func (c *Campaign) parallel(ctx context.Context, root *tree.Node, runs, workers int, successes *atomic.Int64) error {
	pool, err := parallel.NewWorkerPool(workers)
	if err != nil {
		return err
	}

	per, extra := runs/workers, runs%workers
	for i := 0; i < workers; i++ {
		n := per
		if i < extra {
			n++
		}
		walker := NewSeededWalker(c.Seed, workerStream(i))
		pool.Submit(func() error {
			return c.shard(ctx, root, walker, n, successes)
		})
	}

	return pool.Wait()
}

// sequentialStream is the PCG stream of a single-worker campaign. Worker i of
// a parallel campaign uses stream i+1.
const sequentialStream uint64 = 0

func workerStream(i int) uint64 {
	return uint64(i) + 1
}

// shard performs n walks with one walker
func (c *Campaign) shard(ctx context.Context, root *tree.Node, w *Walker, n int, successes *atomic.Int64) error {
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		ok, err := w.Walk(root)
		if err != nil {
			return fmt.Errorf("walk %d: %w", i, err)
		}
		if ok {
			successes.Add(1)
		}

		if c.Metrics != nil {
			stoppedBy := ""
			if stop := w.LastStop(); stop != nil {
				stoppedBy = stop.Kind.String()
			}
			c.Metrics.RecordWalk(ok, stoppedBy)
		}
	}
	return nil
}
