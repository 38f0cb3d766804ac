package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/obslint/obslint/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Detector lipgloss.Style
	Location lipgloss.Style
	Hint     lipgloss.Style
	Summary  lipgloss.Style
	Success  lipgloss.Style
}{
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red bold
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),             // Cyan

	Detector: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")), // Blue
	Location: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),           // Gray
	Hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
	Summary:  lipgloss.NewStyle().Bold(true),
	Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true), // Green
}

// SeverityStyle returns the style for a severity tag.
func SeverityStyle(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityError:
		return Styles.Error
	case domain.SeverityWarning:
		return Styles.Warning
	default:
		return Styles.Info
	}
}

// SeverityTag renders the bracketed severity marker.
func SeverityTag(sev domain.Severity) string {
	switch sev {
	case domain.SeverityError:
		return "[ERROR]"
	case domain.SeverityWarning:
		return "[WARN] "
	default:
		return "[INFO] "
	}
}
