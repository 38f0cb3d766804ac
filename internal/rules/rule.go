// Package rules holds the consistency rules. Each rule is an independent
// pure function over the sealed entity store; rules never communicate and
// must not depend on evaluation order. A rule with nothing to check against
// produces no violations.
package rules

import (
	"regexp"
	"strings"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// Rule checks one consistency invariant.
type Rule interface {
	Name() string
	Check(s *store.Store) []domain.Violation
}

// All returns every rule.
func All() []Rule {
	rules := make([]Rule, 0, 11)
	rules = append(rules, Metrics()...)
	rules = append(rules, Dashboards()...)
	rules = append(rules, Labels()...)
	return rules
}

// Metrics returns the source/registry/catalog rules.
func Metrics() []Rule {
	return []Rule{
		serviceRegistrationRule{},
		prefixConsistencyRule{},
		dashboardCoverageRule{},
		catalogCoverageRule{},
		bucketColocationRule{},
	}
}

// Dashboards returns the dashboard-side rules.
func Dashboards() []Rule {
	return []Rule{
		dashboardExistenceRule{},
		datasourceUIDRule{},
		targetFieldsRule{},
	}
}

// Labels returns the label-validity rules.
func Labels() []Rule {
	return []Rule{
		logLabelRule{},
		templateVariableRule{},
		metricLabelRule{},
	}
}

const lokiDatasource = "loki"

var (
	labelBlockRe = regexp.MustCompile(`\{[^}]*\}`)
	quotedRe     = regexp.MustCompile("\"[^\"]*\"|`[^`]*`")
	identRe      = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_:]*`)
	// label, then a matching operator, inside a selector block
	selectorLabelRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*(=~|!=|!~|=)`)
)

// promQL keywords and modifiers that tokenization must not mistake for
// metric names.
var reservedWords = map[string]bool{
	"by": true, "without": true, "on": true, "ignoring": true,
	"offset": true, "bool": true, "group_left": true, "group_right": true,
}

// metricTokens extracts candidate metric names from a query expression:
// identifier tokens containing an underscore that are not function calls,
// keywords, or content of label selectors and string literals.
func metricTokens(expr string) []string {
	cleaned := labelBlockRe.ReplaceAllString(expr, " ")
	cleaned = quotedRe.ReplaceAllString(cleaned, " ")
	var tokens []string
	for _, loc := range identRe.FindAllStringIndex(cleaned, -1) {
		token := cleaned[loc[0]:loc[1]]
		if !strings.Contains(token, "_") || reservedWords[token] {
			continue
		}
		if isCall(cleaned, loc[1]) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// isCall reports whether the next non-space character is an opening paren,
// which marks the token as a function name.
func isCall(s string, end int) bool {
	for i := end; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n':
			continue
		case '(':
			return true
		default:
			return false
		}
	}
	return false
}

// selectorLabels extracts the label names used inside brace-delimited
// selector blocks of a query expression.
func selectorLabels(expr string) []string {
	var labels []string
	for _, block := range labelBlockRe.FindAllString(expr, -1) {
		inner := strings.Trim(block, "{}")
		for _, m := range selectorLabelRe.FindAllStringSubmatch(inner, -1) {
			labels = append(labels, m[1])
		}
	}
	return labels
}

// metricBackend reports whether a query targets the metrics store rather
// than the log backend.
func metricBackend(q domain.DashboardQuery) bool {
	return q.DatasourceType != lokiDatasource
}
