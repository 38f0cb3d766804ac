package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// serviceRegistrationRule: every directory that defines metrics must have a
// service registration.
type serviceRegistrationRule struct{}

func (serviceRegistrationRule) Name() string { return "service-registration" }

func (serviceRegistrationRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	reported := map[string]bool{}
	for _, m := range s.Metrics() {
		if _, ok := owningRegistration(s, m); ok {
			continue
		}
		dir := serviceDir(m.DefiningFile)
		if reported[dir] {
			continue
		}
		reported[dir] = true
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "service-registration",
			Message:  fmt.Sprintf("directory %q defines metrics but has no service registration", dir),
			File:     m.DefiningFile,
			Line:     m.DefiningLine,
			Hint:     "add the service (prefix, directory, label) to the registry configuration",
		})
	}
	return out
}

// prefixConsistencyRule: a metric's name prefix must match the prefix
// registered for the directory that defines it.
type prefixConsistencyRule struct{}

func (prefixConsistencyRule) Name() string { return "prefix-consistency" }

func (prefixConsistencyRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	for _, m := range s.Metrics() {
		reg, ok := owningRegistration(s, m)
		if !ok {
			continue // reported by service-registration
		}
		if m.OwningPrefix == reg.Prefix {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "prefix-consistency",
			Message: fmt.Sprintf("metric %q uses prefix %q but service %q registers prefix %q",
				m.Name, m.OwningPrefix, reg.Directory, reg.Prefix),
			File: m.DefiningFile,
			Line: m.DefiningLine,
			Hint: fmt.Sprintf("rename the metric to start with %q or move it to the owning service", reg.Prefix+"_"),
		})
	}
	return out
}

// dashboardCoverageRule: every defined metric must be referenced by at least
// one dashboard query, honoring histogram-derived suffixes.
type dashboardCoverageRule struct{}

func (dashboardCoverageRule) Name() string { return "dashboard-coverage" }

func (dashboardCoverageRule) Check(s *store.Store) []domain.Violation {
	referenced := map[string]bool{}
	for _, q := range s.Queries() {
		for _, token := range metricTokens(q.Expr) {
			referenced[token] = true
		}
	}
	var out []domain.Violation
	for _, m := range s.Metrics() {
		covered := false
		for _, name := range store.ReferenceNames(m) {
			if referenced[name] {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "dashboard-coverage",
			Message:  fmt.Sprintf("metric %q is not referenced by any dashboard query", m.Name),
			File:     m.DefiningFile,
			Line:     m.DefiningLine,
			Hint:     "add a panel querying the metric, or delete the metric if it is dead",
		})
	}
	return out
}

// catalogCoverageRule: every defined metric must have a catalog entry.
type catalogCoverageRule struct{}

func (catalogCoverageRule) Name() string { return "catalog-coverage" }

func (catalogCoverageRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	for _, m := range s.Metrics() {
		if s.HasCatalogEntry(m.Name) {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "catalog-coverage",
			Message:  fmt.Sprintf("metric %q has no catalog entry", m.Name),
			File:     m.DefiningFile,
			Line:     m.DefiningLine,
			Hint:     fmt.Sprintf("document the metric under a \"### `%s`\" heading", m.Name),
		})
	}
	return out
}

// bucketColocationRule: every histogram needs a bucket config whose matched
// prefix covers the metric name and which lives in the same source file.
type bucketColocationRule struct{}

func (bucketColocationRule) Name() string { return "bucket-colocation" }

func (bucketColocationRule) Check(s *store.Store) []domain.Violation {
	var out []domain.Violation
	for _, m := range s.Metrics() {
		if m.Kind != domain.MetricHistogram {
			continue
		}
		var matched []domain.BucketConfig
		for _, bc := range s.BucketConfigs() {
			if strings.HasPrefix(m.Name, bc.MatchedPrefix) {
				matched = append(matched, bc)
			}
		}
		if len(matched) == 0 {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "bucket-colocation",
				Message:  fmt.Sprintf("histogram %q has no bucket configuration", m.Name),
				File:     m.DefiningFile,
				Line:     m.DefiningLine,
				Hint:     "register buckets with a Matcher::Prefix covering the metric name",
			})
			continue
		}
		sameFile := false
		for _, bc := range matched {
			if bc.DefiningFile == m.DefiningFile {
				sameFile = true
				break
			}
		}
		if !sameFile {
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "bucket-colocation",
				Message: fmt.Sprintf("histogram %q has a bucket configuration in %q, not in its defining file",
					m.Name, matched[0].DefiningFile),
				File: m.DefiningFile,
				Line: m.DefiningLine,
				Hint: "move the bucket registration next to the metric declaration",
			})
		}
	}
	return out
}

// owningRegistration finds the registration whose directory contains the
// metric's defining file.
func owningRegistration(s *store.Store, m domain.Metric) (domain.ServiceRegistration, bool) {
	file := path.Clean(strings.ReplaceAll(m.DefiningFile, "\\", "/"))
	for _, reg := range s.Registrations() {
		dir := path.Clean(reg.Directory)
		if file == dir || strings.HasPrefix(file, dir+"/") {
			return reg, true
		}
	}
	return domain.ServiceRegistration{}, false
}

// serviceDir approximates the service directory of a source file: the first
// two path segments (e.g. "services/auth"), or the immediate parent when
// the path is shallower.
func serviceDir(file string) string {
	parts := strings.Split(strings.ReplaceAll(file, "\\", "/"), "/")
	if len(parts) > 2 {
		return path.Join(parts[0], parts[1])
	}
	return path.Dir(file)
}
