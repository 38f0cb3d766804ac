package domain

import (
	"fmt"
	"sort"
)

// Severity classifies a finding. Only SeverityError affects exit status.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation is a single consistency finding. Immutable once created.
type Violation struct {
	Severity Severity
	Detector string
	Message  string
	File     string
	Line     int
	Hint     string
}

// Location renders the file:line position, or "-" for findings with no
// physical location.
func (v Violation) Location() string {
	if v.File == "" {
		return "-"
	}
	if v.Line <= 0 {
		return v.File
	}
	return fmt.Sprintf("%s:%d", v.File, v.Line)
}

// SortViolations orders findings by (detector, file, line, message) so a run
// over an unchanged tree always prints the same bytes.
func SortViolations(vs []Violation) {
	sort.Slice(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Detector != b.Detector {
			return a.Detector < b.Detector
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Message < b.Message
	})
}

// CountBySeverity tallies findings for summary output.
func CountBySeverity(vs []Violation) (errors, warnings, infos int) {
	for _, v := range vs {
		switch v.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return
}
