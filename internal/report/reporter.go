// Package report renders violations and computes exit status. Severity
// policy lives here and nowhere else: only error-severity findings fail a
// run.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/obslint/obslint/internal/domain"
)

// Exit codes of the validator.
const (
	ExitClean      = 0
	ExitViolations = 1
	ExitTooling    = 2
)

// Reporter prints human-readable findings grouped by detector.
type Reporter struct {
	Out   io.Writer
	Color bool
}

// Print writes every finding grouped by detector, then a summary table and
// a machine-countable totals line. Findings are sorted first so output is
// byte-identical across runs on an unchanged tree.
func (r *Reporter) Print(violations []domain.Violation) {
	vs := make([]domain.Violation, len(violations))
	copy(vs, violations)
	domain.SortViolations(vs)

	var lastDetector string
	for _, v := range vs {
		if v.Detector != lastDetector {
			if lastDetector != "" {
				fmt.Fprintln(r.Out)
			}
			fmt.Fprintf(r.Out, "%s\n", r.styled(Styles.Detector, "== "+v.Detector))
			lastDetector = v.Detector
		}
		line := fmt.Sprintf("%s %s: %s",
			r.styled(SeverityStyle(v.Severity), SeverityTag(v.Severity)),
			r.styled(Styles.Location, v.Location()),
			v.Message)
		if v.Hint != "" {
			line += r.styled(Styles.Hint, fmt.Sprintf(" (fix: %s)", v.Hint))
		}
		fmt.Fprintln(r.Out, line)
	}
	if len(vs) > 0 {
		fmt.Fprintln(r.Out)
	}
	r.printSummary(vs)
}

func (r *Reporter) printSummary(vs []domain.Violation) {
	errors, warnings, infos := domain.CountBySeverity(vs)
	if len(vs) == 0 {
		fmt.Fprintln(r.Out, r.styled(Styles.Success, "no violations found"))
	} else {
		table := tablewriter.NewWriter(r.Out)
		table.Header("Severity", "Count")
		table.Append([]string{"error", fmt.Sprintf("%d", errors)})
		table.Append([]string{"warning", fmt.Sprintf("%d", warnings)})
		table.Append([]string{"info", fmt.Sprintf("%d", infos)})
		table.Render()
	}
	fmt.Fprintf(r.Out, "summary: errors=%d warnings=%d info=%d total=%d\n",
		errors, warnings, infos, len(vs))
}

func (r *Reporter) styled(style interface{ Render(...string) string }, s string) string {
	if !r.Color {
		return s
	}
	return style.Render(s)
}

// ExitCode maps findings to process exit status. Warnings and info never
// fail the run.
func ExitCode(vs []domain.Violation) int {
	errors, _, _ := domain.CountBySeverity(vs)
	if errors > 0 {
		return ExitViolations
	}
	return ExitClean
}
