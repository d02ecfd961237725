package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	treeBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

const barWidth = 40

func (m appModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	name := m.model.Name
	if name == "" {
		name = "attack tree"
	}
	s.WriteString(titleStyle.Render("Attack Tree Simulation - " + name))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case resultsView:
		s.WriteString(m.renderResults())
	case treeView:
		s.WriteString(m.renderTree())
	case analyticView:
		s.WriteString(m.renderAnalytic())
	}

	s.WriteString("\n\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	case m.finished():
		s.WriteString(successStyle.Render(fmt.Sprintf("✓ Campaign finished: %d walks in %s", m.done, m.elapsed.Round(time.Millisecond))))
	case m.paused:
		s.WriteString(helpStyle.Render("paused"))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m appModel) renderTabs() string {
	var renderedTabs []string

	for i, tab := range viewNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = barWidth * done / total
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

func (m appModel) renderResults() string {
	stats := fmt.Sprintf(`Campaign
Walks:      %d / %d
Successes:  %d
Stops:      %d
Workers:    %d
Seed:       %d

Percentage of successful attacks: %.2f`,
		m.done, m.opts.runs,
		m.successes,
		m.done-m.successes,
		m.opts.workers,
		m.opts.seed,
		m.percentage(),
	)

	var s strings.Builder
	s.WriteString(statsBoxStyle.Render(stats))
	s.WriteString("\n")
	s.WriteString(progressBar(m.done, m.opts.runs))
	s.WriteString("\n\n")
	s.WriteString(headerStyle.Render("Stopping points"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())

	return contentStyle.Render(s.String())
}

func (m appModel) renderTree() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Model"))
	s.WriteString("\n\n")
	s.WriteString(treeBoxStyle.Render(strings.TrimRight(m.outline, "\n")))

	return contentStyle.Render(s.String())
}

func (m appModel) renderAnalytic() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Analytic estimate"))
	s.WriteString("\n\n")

	if m.probErr != nil {
		s.WriteString(errorStyle.Render(m.probErr.Error()))
		return contentStyle.Render(s.String())
	}

	content := fmt.Sprintf(`Root probability:   %.3f
Simulated success:  %.3f

Per node |p|:`, m.probability, m.percentage()/100)

	var lines []string
	m.model.Root.Walk(func(n *tree.Node, depth int) bool {
		lines = append(lines, fmt.Sprintf("%s%-*s %.3f", strings.Repeat("  ", depth), max(30-2*depth, 1), n.Name, n.LastProbability()))
		return true
	})

	s.WriteString(statsBoxStyle.Render(content + "\n" + strings.Join(lines, "\n")))
	return contentStyle.Render(s.String())
}
