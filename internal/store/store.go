// Package store holds the canonical entity model extracted from all
// artifact types. A Builder accumulates entities during extraction; Seal
// produces the read-only Store the rules run against. Entities from
// different artifacts are joined exclusively on normalized string keys
// (metric name, label name, datasource UID), never on format-specific
// references.
package store

import (
	"sort"
	"strings"

	"github.com/obslint/obslint/internal/domain"
)

// Builder accumulates extracted entities. Not safe for concurrent use;
// concurrent extractors each fill their own Builder and Merge combines them.
type Builder struct {
	registrations []domain.ServiceRegistration
	metrics       []domain.Metric
	buckets       []domain.BucketConfig
	queries       []domain.DashboardQuery
	dsRefs        []domain.DatasourceRef
	templateVars  []domain.TemplateVariable
	datasources   []domain.DatasourceDefinition
	logLabels     []domain.LogLabel
	infraLabels   []string
	catalog       []domain.CatalogEntry
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) AddRegistration(r domain.ServiceRegistration) { b.registrations = append(b.registrations, r) }
func (b *Builder) AddMetric(m domain.Metric)                    { b.metrics = append(b.metrics, m) }
func (b *Builder) AddBucketConfig(c domain.BucketConfig)        { b.buckets = append(b.buckets, c) }
func (b *Builder) AddQuery(q domain.DashboardQuery)             { b.queries = append(b.queries, q) }
func (b *Builder) AddDatasourceRef(r domain.DatasourceRef)      { b.dsRefs = append(b.dsRefs, r) }
func (b *Builder) AddTemplateVariable(v domain.TemplateVariable) {
	b.templateVars = append(b.templateVars, v)
}
func (b *Builder) AddDatasource(d domain.DatasourceDefinition) { b.datasources = append(b.datasources, d) }
func (b *Builder) AddLogLabel(l domain.LogLabel)               { b.logLabels = append(b.logLabels, l) }
func (b *Builder) AddInfraLabel(name string)                   { b.infraLabels = append(b.infraLabels, name) }
func (b *Builder) AddCatalogEntry(e domain.CatalogEntry)       { b.catalog = append(b.catalog, e) }

// Merge folds another builder's entities into this one.
func (b *Builder) Merge(other *Builder) {
	b.registrations = append(b.registrations, other.registrations...)
	b.metrics = append(b.metrics, other.metrics...)
	b.buckets = append(b.buckets, other.buckets...)
	b.queries = append(b.queries, other.queries...)
	b.dsRefs = append(b.dsRefs, other.dsRefs...)
	b.templateVars = append(b.templateVars, other.templateVars...)
	b.datasources = append(b.datasources, other.datasources...)
	b.logLabels = append(b.logLabels, other.logLabels...)
	b.infraLabels = append(b.infraLabels, other.infraLabels...)
	b.catalog = append(b.catalog, other.catalog...)
}

// Seal freezes the builder into an indexed, read-only store. Entity slices
// are sorted so downstream iteration order is deterministic.
func (b *Builder) Seal() *Store {
	s := &Store{
		registrations: b.registrations,
		metrics:       b.metrics,
		buckets:       b.buckets,
		queries:       b.queries,
		dsRefs:        b.dsRefs,
		templateVars:  b.templateVars,
		datasources:   b.datasources,
		catalog:       b.catalog,
		metricsByName: make(map[string]domain.Metric, len(b.metrics)),
		datasourceUID: make(map[string]bool, len(b.datasources)),
		logLabelSet:   make(map[string]bool, len(b.logLabels)),
		infraLabelSet: make(map[string]bool, len(b.infraLabels)),
		catalogSet:    make(map[string]bool, len(b.catalog)),
	}
	sort.Slice(s.metrics, func(i, j int) bool {
		if s.metrics[i].Name != s.metrics[j].Name {
			return s.metrics[i].Name < s.metrics[j].Name
		}
		return s.metrics[i].DefiningFile < s.metrics[j].DefiningFile
	})
	sort.Slice(s.queries, func(i, j int) bool {
		if s.queries[i].DashboardFile != s.queries[j].DashboardFile {
			return s.queries[i].DashboardFile < s.queries[j].DashboardFile
		}
		return s.queries[i].PanelID < s.queries[j].PanelID
	})
	for _, m := range s.metrics {
		s.metricsByName[m.Name] = m
	}
	for _, d := range s.datasources {
		s.datasourceUID[d.UID] = true
	}
	for _, l := range b.logLabels {
		s.logLabelSet[l.Name] = true
	}
	for _, n := range b.infraLabels {
		s.infraLabelSet[n] = true
	}
	for _, e := range s.catalog {
		s.catalogSet[e.MetricName] = true
	}
	return s
}

// Store is the immutable entity store. All accessors return data populated
// before Seal; nothing mutates it afterwards, so rules may run concurrently.
type Store struct {
	registrations []domain.ServiceRegistration
	metrics       []domain.Metric
	buckets       []domain.BucketConfig
	queries       []domain.DashboardQuery
	dsRefs        []domain.DatasourceRef
	templateVars  []domain.TemplateVariable
	datasources   []domain.DatasourceDefinition
	catalog       []domain.CatalogEntry

	metricsByName map[string]domain.Metric
	datasourceUID map[string]bool
	logLabelSet   map[string]bool
	infraLabelSet map[string]bool
	catalogSet    map[string]bool
}

func (s *Store) Registrations() []domain.ServiceRegistration   { return s.registrations }
func (s *Store) Metrics() []domain.Metric                      { return s.metrics }
func (s *Store) BucketConfigs() []domain.BucketConfig          { return s.buckets }
func (s *Store) Queries() []domain.DashboardQuery              { return s.queries }
func (s *Store) DatasourceRefs() []domain.DatasourceRef        { return s.dsRefs }
func (s *Store) TemplateVariables() []domain.TemplateVariable  { return s.templateVars }
func (s *Store) Datasources() []domain.DatasourceDefinition    { return s.datasources }
func (s *Store) CatalogEntries() []domain.CatalogEntry         { return s.catalog }

func (s *Store) HasDatasourceUID(uid string) bool { return s.datasourceUID[uid] }
func (s *Store) HasLogLabel(name string) bool     { return s.logLabelSet[name] }
func (s *Store) HasInfraLabel(name string) bool   { return s.infraLabelSet[name] }
func (s *Store) InfraLabelCount() int             { return len(s.infraLabelSet) }
func (s *Store) HasCatalogEntry(name string) bool { return s.catalogSet[name] }

// MetricByName looks up a metric by exact name.
func (s *Store) MetricByName(name string) (domain.Metric, bool) {
	m, ok := s.metricsByName[name]
	return m, ok
}

// histogramSuffixes are the series suffixes a histogram metric exposes.
var histogramSuffixes = []string{"_bucket", "_count", "_sum"}

// ResolveMetric resolves a name referenced in a query expression against
// defined metrics, honoring histogram-derived suffixes: "foo_bucket"
// resolves to the base metric "foo".
func (s *Store) ResolveMetric(name string) (domain.Metric, bool) {
	if m, ok := s.metricsByName[name]; ok {
		return m, true
	}
	for _, suf := range histogramSuffixes {
		if base, found := strings.CutSuffix(name, suf); found {
			if m, ok := s.metricsByName[base]; ok {
				return m, true
			}
		}
	}
	return domain.Metric{}, false
}

// ReferenceNames returns all names under which a defined metric may appear
// in a query expression: the metric name itself plus, for histograms, the
// derived series names.
func ReferenceNames(m domain.Metric) []string {
	names := []string{m.Name}
	if m.Kind == domain.MetricHistogram {
		for _, suf := range histogramSuffixes {
			names = append(names, m.Name+suf)
		}
	}
	return names
}

// MetricNames returns the sorted list of defined metric names.
func (s *Store) MetricNames() []string {
	names := make([]string, 0, len(s.metrics))
	for _, m := range s.metrics {
		names = append(names, m.Name)
	}
	return names
}
