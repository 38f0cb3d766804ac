package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/obslint/obslint/internal/report"
	"github.com/obslint/obslint/internal/rules"
	"github.com/obslint/obslint/internal/tui"
)

// UICmd browses findings interactively.
type UICmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

// Run executes the ui command
func (c *UICmd) Run(g *Globals) error {
	violations, err := collectViolations(g, c.Root, rules.All(), true)
	if err != nil {
		fmt.Fprintf(g.Stderr, "obslint: tooling failure: %v\n", err)
		return &ExitError{Code: report.ExitTooling}
	}
	m := tui.New(c.Root, violations)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
