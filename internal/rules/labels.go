package rules

import (
	"fmt"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// exemptLogLabel is valid in log queries even though the pipeline never
// produces it via relabeling. Fixed, documented special case.
const exemptLogLabel = "level"

// dockerStyleLabels are deprecated selector labels awaiting an enforcement
// policy; flagged as info only.
var dockerStyleLabels = map[string]bool{"name": true, "containerName": true, "image": true}

// infraLabels are the platform labels this rule validates. Metric-specific
// labels are never checked here.
var infraLabels = map[string]bool{
	"namespace": true, "pod": true, "node": true,
	"container": true, "service": true, "endpoint": true,
}

// logLabelRule: every label used in a log-query selector must be a label
// the pipeline actually produces.
type logLabelRule struct{}

func (logLabelRule) Name() string { return "log-label" }

func (logLabelRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	seen := map[string]bool{}
	for _, q := range s.Queries() {
		if metricBackend(q) {
			continue
		}
		for _, label := range selectorLabels(q.Expr) {
			if label == exemptLogLabel || s.HasLogLabel(label) {
				continue
			}
			key := q.DashboardFile + "\x00" + label
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "log-label",
				Message:  fmt.Sprintf("log query filters on label %q which the pipeline never produces", label),
				File:     q.DashboardFile,
				Hint:     "add a relabel rule or pipeline labels stage producing the label, or fix the query",
			})
		}
	}
	return out
}

// templateVariableRule: a log-backend template variable must be named after
// the label it queries, and that label must be valid.
type templateVariableRule struct{}

func (templateVariableRule) Name() string { return "template-variable" }

func (templateVariableRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	for _, tv := range s.TemplateVariables() {
		if tv.Name != tv.QueriedLabel {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "template-variable",
				Message: fmt.Sprintf("template variable %q queries label %q; names must match",
					tv.Name, tv.QueriedLabel),
				File: tv.DashboardFile,
				Hint: "rename the variable to the queried label",
			})
		}
		if tv.QueriedLabel != exemptLogLabel && !s.HasLogLabel(tv.QueriedLabel) {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "template-variable",
				Message: fmt.Sprintf("template variable %q queries label %q which the pipeline never produces",
					tv.Name, tv.QueriedLabel),
				File: tv.DashboardFile,
				Hint: "query a label the pipeline produces",
			})
		}
	}
	return out
}

// metricLabelRule: heuristic checks on metrics-backend selector labels.
// Docker-style labels are info (no enforcement policy yet); infrastructure
// labels the scrape config does not produce are warnings.
type metricLabelRule struct{}

func (metricLabelRule) Name() string { return "metric-label" }

func (metricLabelRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	seen := map[string]bool{}
	for _, q := range s.Queries() {
		if !metricBackend(q) {
			continue
		}
		for _, label := range selectorLabels(q.Expr) {
			key := q.DashboardFile + "\x00" + label
			if seen[key] {
				continue
			}
			switch {
			case dockerStyleLabels[label]:
				seen[key] = true
				out = append(out, domain.Violation{
					Severity: domain.SeverityInfo,
					Detector: "metric-label",
					Message:  fmt.Sprintf("query uses docker-style selector label %q", label),
					File:     q.DashboardFile,
					Hint:     "prefer Kubernetes labels (pod, container, namespace)",
				})
			case infraLabels[label] && s.InfraLabelCount() > 0 && !s.HasInfraLabel(label):
				seen[key] = true
				out = append(out, domain.Violation{
					Severity: domain.SeverityWarning,
					Detector: "metric-label",
					Message:  fmt.Sprintf("query filters on infrastructure label %q which the scrape config does not produce", label),
					File:     q.DashboardFile,
					Hint:     "check the relabel rules in the metrics scrape config",
				})
			}
		}
	}
	return out
}
