// Package tui is an interactive browser over the findings of one run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Model represents the TUI state
type Model struct {
	root       string
	violations []domain.Violation
	filtered   []domain.Violation
	viewport   viewport.Model
	textinput  textinput.Model
	width      int
	height     int
	ready      bool
	searching  bool
	query      string
	errorsOnly bool
}

// New creates a new TUI model over a sorted copy of the findings.
func New(root string, violations []domain.Violation) Model {
	vs := make([]domain.Violation, len(violations))
	copy(vs, violations)
	domain.SortViolations(vs)

	ti := textinput.New()
	ti.Placeholder = "Filter findings..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		root:       root,
		violations: vs,
		filtered:   vs,
		textinput:  ti,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd { return nil }

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.render())

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.query = m.textinput.Value()
				m.applyFilter()
			case "esc":
				m.searching = false
				m.textinput.SetValue(m.query)
			default:
				var cmd tea.Cmd
				m.textinput, cmd = m.textinput.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.textinput.Focus()
			return m, textinput.Blink
		case "e":
			m.errorsOnly = !m.errorsOnly
			m.applyFilter()
		case "esc":
			m.query = ""
			m.textinput.SetValue("")
			m.applyFilter()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// applyFilter recomputes the visible findings.
func (m *Model) applyFilter() {
	query := strings.ToLower(m.query)
	m.filtered = nil
	for _, v := range m.violations {
		if m.errorsOnly && v.Severity != domain.SeverityError {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(v.Detector + " " + v.Message + " " + v.File)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		m.filtered = append(m.filtered, v)
	}
	if m.ready {
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
	}
}

// render formats the filtered findings for the viewport.
func (m Model) render() string {
	if len(m.filtered) == 0 {
		return helpStyle.Render("no findings match")
	}
	var b strings.Builder
	var lastDetector string
	for _, v := range m.filtered {
		if v.Detector != lastDetector {
			if lastDetector != "" {
				b.WriteString("\n")
			}
			b.WriteString(titleStyle.Render(v.Detector) + "\n")
			lastDetector = v.Detector
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n",
			report.SeverityStyle(v.Severity).Render(report.SeverityTag(v.Severity)),
			v.Location(), v.Message))
		if v.Hint != "" {
			b.WriteString(helpStyle.Render("       fix: "+v.Hint) + "\n")
		}
	}
	return b.String()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	errors, warnings, infos := domain.CountBySeverity(m.filtered)
	header := titleStyle.Render(fmt.Sprintf("obslint %s", m.root))
	status := statusStyle.Render(fmt.Sprintf("%d errors  %d warnings  %d info  (%d shown)",
		errors, warnings, infos, len(m.filtered)))
	help := helpStyle.Render("q quit  / filter  e errors-only  esc clear")
	if m.searching {
		help = m.textinput.View()
	}
	return header + "\n" + m.viewport.View() + "\n" + status + "  " + help
}
