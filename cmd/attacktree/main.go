// Command attacktree evaluates or simulates an attack tree model.
//
// Usage:
//
//	attacktree [flags] <model.yaml>
//
// In prob mode the tree is evaluated analytically and written as a GraphViz
// digraph annotated with probabilities. In run mode a simulation campaign is
// performed and every node is listed by how often it stopped an attack,
// followed by the overall success percentage. auto picks one of the two from
// the model's analytic flag.
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-attacktree/pkg/analytic"
	"github.com/dd0wney/cluso-attacktree/pkg/config"
	"github.com/dd0wney/cluso-attacktree/pkg/logging"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/model"
	"github.com/dd0wney/cluso-attacktree/pkg/render"
	"github.com/dd0wney/cluso-attacktree/pkg/report"
	"github.com/dd0wney/cluso-attacktree/pkg/simulation"
	"github.com/dd0wney/cluso-attacktree/pkg/tracing"
	"github.com/dd0wney/cluso-attacktree/pkg/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	mode       string
	runs       int
	workers    int
	seed       uint64
	format     string
	out        string
	metrics    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("attacktree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: attacktree [flags] <model.yaml>")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "optional YAML settings file")
	fs.StringVar(&opts.mode, "mode", config.DefaultMode, "auto, prob, run, print or convert")
	fs.IntVar(&opts.runs, "runs", config.DefaultRuns, "walks per simulation campaign")
	fs.IntVar(&opts.workers, "workers", config.DefaultWorkers, "parallel walkers")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed (random if unset)")
	fs.StringVar(&opts.format, "format", config.DefaultFormat, "report format: csv or table")
	fs.StringVar(&opts.out, "out", "", "target directory for convert mode (default: model name)")
	fs.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics after the run")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

// settings layers explicitly set flags over file and environment settings
func settings(opts *options, fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = opts.mode
		case "runs":
			cfg.SetRuns(opts.runs)
		case "workers":
			cfg.Workers = opts.workers
		case "seed":
			cfg.SetSeed(opts.seed)
		case "format":
			cfg.Format = opts.format
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// A missing model is not treated as a failure
	if fs.NArg() != 1 {
		fs.Usage()
		return 0
	}
	path := fs.Arg(0)

	cfg, err := settings(opts, fs)
	if err != nil {
		fmt.Fprintln(stderr, "attacktree:", err)
		return 1
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(cfg.LogLevel)).
		With(logging.Component("attacktree"))
	reg := metrics.NewRegistry()

	shutdown, err := tracing.Setup(ctx, "attacktree")
	if err != nil {
		logger.Warn("tracing disabled", logging.Error(err))
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("flush traces", logging.Error(err))
		}
	}()

	m, err := (&model.Loader{Logger: logger, Metrics: reg}).Load(path)
	if err != nil {
		fmt.Fprintln(stderr, "attacktree:", err)
		return 1
	}

	mode := cfg.Mode
	if mode == "auto" {
		mode = "run"
		if m.Analytic {
			mode = "prob"
		}
	}

	d := &driver{cfg: cfg, model: m, logger: logger, metrics: reg, stdout: stdout}
	switch mode {
	case "prob":
		err = d.prob(ctx)
	case "run":
		err = d.simulate(ctx)
	case "print":
		err = render.WriteOutline(stdout, m.Root)
	case "convert":
		err = d.convert(opts.out)
	}
	if err != nil {
		logger.Error("command failed", logging.String("mode", mode), logging.Error(err))
		fmt.Fprintln(stderr, "attacktree:", err)
		return 1
	}

	if opts.metrics {
		if err := reg.WriteText(stdout); err != nil {
			fmt.Fprintln(stderr, "attacktree:", err)
			return 1
		}
	}
	return 0
}

type driver struct {
	cfg     *config.Config
	model   *model.Model
	logger  logging.Logger
	metrics *metrics.Registry
	stdout  io.Writer
}

func (d *driver) prob(ctx context.Context) error {
	p, err := analytic.NewEvaluator(d.logger, d.metrics).EvaluateContext(ctx, d.model.Root)
	if err != nil {
		return err
	}
	d.metrics.SetRootProbability(p)
	d.logger.Info("root probability", logging.Model(d.model.Name), logging.Float64("probability", p))
	return render.WriteDOT(d.stdout, d.model.Root, true)
}

// simulate runs a campaign. The model's own run count applies unless the
// caller set one explicitly.
func (d *driver) simulate(ctx context.Context) error {
	runs := d.cfg.Runs
	if d.model.Runs > 0 && !d.cfg.RunsSet {
		runs = d.model.Runs
	}

	seed := d.cfg.Seed
	if !d.cfg.SeedSet {
		var err error
		if seed, err = randomSeed(); err != nil {
			return err
		}
	}

	c := &simulation.Campaign{
		Runs:    runs,
		Workers: d.cfg.Workers,
		Seed:    seed,
		Logger:  d.logger.With(logging.Model(d.model.Name)),
		Metrics: d.metrics,
	}
	res, err := c.Run(ctx, d.model.Root, d.model.Registry)
	if err != nil {
		return err
	}

	return report.Write(d.stdout, d.cfg.Format, report.Rows(d.model.Registry), res)
}

func (d *driver) convert(out string) error {
	out = validation.DefaultOr(validation.DefaultOr(out, d.model.Name), "attacktree-export")
	if err := render.ExportDir(out, d.model.Root); err != nil {
		return err
	}
	d.logger.Info("model exported", logging.Path(out), logging.Int("nodes", d.model.Registry.Len()))
	return nil
}

func randomSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generate seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
