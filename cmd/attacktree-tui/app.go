package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-attacktree/pkg/analytic"
	"github.com/dd0wney/cluso-attacktree/pkg/metrics"
	"github.com/dd0wney/cluso-attacktree/pkg/model"
	"github.com/dd0wney/cluso-attacktree/pkg/render"
	"github.com/dd0wney/cluso-attacktree/pkg/report"
	"github.com/dd0wney/cluso-attacktree/pkg/simulation"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
	"github.com/dd0wney/cluso-attacktree/pkg/validation"
)

const (
	defaultBatch = 250
	tickInterval = 100 * time.Millisecond
)

type view int

const (
	resultsView view = iota
	treeView
	analyticView
	viewCount
)

var viewNames = []string{"Results", "Tree", "Analytic"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Pause    key.Binding
	Reset    key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause/resume"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Pause, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Pause, k.Reset, k.Quit},
	}
}

type options struct {
	runs    int
	batch   int
	workers int
	seed    uint64
}

type appModel struct {
	model   *model.Model
	metrics *metrics.Registry
	opts    options

	currentView view
	nodeTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int

	done      int
	successes int
	batches   uint64
	paused    bool
	err       error
	startTime time.Time
	elapsed   time.Duration

	outline     string
	probability float64
	probErr     error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func initialModel(m *model.Model, reg *metrics.Registry, opts options) appModel {
	opts.runs = validation.DefaultOrInt(opts.runs, simulation.DefaultRuns)
	opts.batch = validation.DefaultOrInt(opts.batch, defaultBatch)
	opts.workers = validation.DefaultOrInt(opts.workers, 1)

	columns := []table.Column{
		{Title: "Kind", Width: 9},
		{Title: "Name", Width: 36},
		{Title: "Stops", Width: 10},
		{Title: "Share", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)


	p, probErr := analytic.Evaluate(m.Root)

	app := appModel{
		model:       m,
		metrics:     reg,
		opts:        opts,
		currentView: resultsView,
		nodeTable:   t,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
		outline:     outlineText(m.Root),
		probability: p,
		probErr:     probErr,
	}
	app.refreshTable()
	return app
}

// outlineText renders the tree outline, or the render error in its place
func outlineText(root *tree.Node) string {
	var b strings.Builder
	if err := render.WriteOutline(&b, root); err != nil {
		return "outline unavailable: " + err.Error()
	}
	return b.String()
}

func (m appModel) Init() tea.Cmd {
	return tickCmd()
}

func (m appModel) finished() bool {
	return m.done >= m.opts.runs || m.err != nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		if !m.paused && !m.finished() {
			m.step()
		}
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount

		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused

		case key.Matches(msg, m.keys.Reset):
			m.reset()
		}
	}

	if m.currentView == resultsView {
		m.nodeTable, cmd = m.nodeTable.Update(msg)
	}
	return m, cmd
}

// step runs one batch of walks. Every batch gets its own seed so a session
// is reproducible from opts.seed.
func (m *appModel) step() {
	n := min(m.opts.batch, m.opts.runs-m.done)

	c := &simulation.Campaign{
		Runs:    n,
		Workers: m.opts.workers,
		Seed:    m.opts.seed + m.batches,
		Metrics: m.metrics,
	}
	res, err := c.Run(context.Background(), m.model.Root, m.model.Registry)
	if err != nil {
		m.err = err
		return
	}

	m.batches++
	m.done += res.Runs
	m.successes += res.Successes
	m.elapsed = time.Since(m.startTime)
	m.refreshTable()
}

func (m *appModel) reset() {
	m.model.Registry.ResetCounters()
	m.done = 0
	m.successes = 0
	m.batches = 0
	m.err = nil
	m.startTime = time.Now()
	m.elapsed = 0
	m.refreshTable()
}

// refreshTable lists nodes with the most effective stopping points first
func (m *appModel) refreshTable() {
	rows := report.Rows(m.model.Registry)
	stops := m.done - m.successes

	out := make([]table.Row, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		share := "-"
		if stops > 0 {
			share = fmt.Sprintf("%.1f%%", 100*float64(r.SuccessCount)/float64(stops))
		}
		out = append(out, table.Row{r.Kind, r.Name, fmt.Sprintf("%d", r.SuccessCount), share})
	}
	m.nodeTable.SetRows(out)
}

func (m appModel) percentage() float64 {
	res := simulation.Result{Runs: m.done, Successes: m.successes}
	return res.Percentage()
}
