package rules

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// dashboardExistenceRule: every metric name referenced by a metrics-backend
// query must resolve to a defined metric, honoring histogram suffixes.
type dashboardExistenceRule struct{}

func (dashboardExistenceRule) Name() string { return "dashboard-existence" }

func (dashboardExistenceRule) Check(s *store.Store) []domain.Violation {
	if len(s.Metrics()) == 0 {
		return nil
	}
	var out []domain.Violation
	seen := map[string]bool{}
	for _, q := range s.Queries() {
		if !metricBackend(q) {
			continue
		}
		for _, token := range metricTokens(q.Expr) {
			if _, ok := s.ResolveMetric(token); ok {
				continue
			}
			key := q.DashboardFile + "\x00" + token
			if seen[key] {
				continue
			}
			seen[key] = true
			hint := "check the metric name against the service source"
			if closest := closestName(token, s.MetricNames()); closest != "" {
				hint = fmt.Sprintf("did you mean %q?", closest)
			}
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "dashboard-existence",
				Message: fmt.Sprintf("query references unknown metric %q (panel %q)",
					token, q.PanelTitle),
				File: q.DashboardFile,
				Hint: hint,
			})
		}
	}
	return out
}

// datasourceUIDRule: every referenced datasource UID must be provisioned.
type datasourceUIDRule struct{}

func (datasourceUIDRule) Name() string { return "datasource-uid" }

func (datasourceUIDRule) Check(s *store.Store) []domain.Violation {
	if len(s.Datasources()) == 0 {
		return nil
	}
	var out []domain.Violation
	seen := map[string]bool{}
	for _, ref := range s.DatasourceRefs() {
		if ref.UID == "" || strings.HasPrefix(ref.UID, "$") || strings.HasPrefix(ref.UID, "--") {
			continue // template-variable and built-in references
		}
		if s.HasDatasourceUID(ref.UID) {
			continue
		}
		key := ref.DashboardFile + "\x00" + ref.UID
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "datasource-uid",
			Message:  fmt.Sprintf("datasource uid %q is not provisioned", ref.UID),
			File:     ref.DashboardFile,
			Hint:     "add the datasource to provisioning or fix the uid in the dashboard",
		})
	}
	return out
}

// targetFieldsRule: metrics-backend targets with a query expression must
// declare an editor mode and exactly one of range/instant.
type targetFieldsRule struct{}

func (targetFieldsRule) Name() string { return "target-fields" }

func (targetFieldsRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	for _, q := range s.Queries() {
		if !q.FromTarget || !metricBackend(q) || q.Expr == "" {
			continue
		}
		if q.EditorMode == "" {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "target-fields",
				Message:  fmt.Sprintf("target on panel %q (id %d) has no editorMode", q.PanelTitle, q.PanelID),
				File:     q.DashboardFile,
				Hint:     `set "editorMode": "code" on the target`,
			})
		}
		if q.HasRange == q.HasInstant {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "target-fields",
				Message: fmt.Sprintf("target on panel %q (id %d) must declare exactly one of range or instant",
					q.PanelTitle, q.PanelID),
				File: q.DashboardFile,
				Hint: `set "range": true or "instant": true on the target`,
			})
		}
	}
	return out
}

// closestName suggests the known metric name most similar to an unresolved
// reference, falling back to substring containment when fuzzy ranking finds
// nothing.
func closestName(token string, names []string) string {
	if matches := fuzzy.Find(token, names); len(matches) > 0 {
		return matches[0].Str
	}
	for _, name := range names {
		if strings.Contains(name, token) || strings.Contains(token, name) {
			return name
		}
	}
	return ""
}
