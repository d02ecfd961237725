// Command attacktree-tui runs a simulation campaign interactively, showing
// live per-node stop counts while walks accumulate in batches.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-attacktree/pkg/config"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/model"
)

func main() {
	runs := flag.Int("runs", 0, "total walks (default: model runs, then ATTACKTREE_RUNS)")
	batch := flag.Int("batch", defaultBatch, "walks per refresh")
	workers := flag.Int("workers", 0, "parallel walkers (default ATTACKTREE_WORKERS or 1)")
	seed := flag.Uint64("seed", 0, "random seed (default ATTACKTREE_SEED or 1)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: attacktree-tui [flags] <model.yaml>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	reg := metrics.NewRegistry()
	m, err := (&model.Loader{Metrics: reg}).Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	opts := options{
		runs:    cfg.Runs,
		batch:   *batch,
		workers: cfg.Workers,
		seed:    1,
	}
	if m.Runs > 0 && !cfg.RunsSet {
		opts.runs = m.Runs
	}
	if *runs > 0 {
		opts.runs = *runs
	}
	if *workers > 0 {
		opts.workers = *workers
	}
	if cfg.SeedSet {
		opts.seed = cfg.Seed
	}
	if *seed != 0 {
		opts.seed = *seed
	}

	p := tea.NewProgram(initialModel(m, reg, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
