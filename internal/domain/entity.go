package domain

import "strings"

// MetricKind classifies a metric declaration.
type MetricKind string

const (
	MetricCounter   MetricKind = "counter"
	MetricHistogram MetricKind = "histogram"
	MetricGauge     MetricKind = "gauge"
)

// ServiceRegistration maps a metric prefix to the service directory that owns
// it. Loaded once from configuration; immutable for a run.
type ServiceRegistration struct {
	Prefix       string
	Directory    string
	DisplayLabel string
}

// Metric is a named, typed measurement point declared in service source.
type Metric struct {
	Name         string
	Kind         MetricKind
	DefiningFile string
	DefiningLine int
	OwningPrefix string
}

// OwningPrefix derives the service prefix from a metric name: the substring
// before the first underscore.
func OwningPrefix(name string) string {
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return name
}

// BucketConfig is a histogram bucket registration. It must live in the same
// source file as the metric it configures.
type BucketConfig struct {
	MatchedPrefix string
	DefiningFile  string
	DefiningLine  int
}

// DashboardQuery is a single query target attached to a dashboard panel.
type DashboardQuery struct {
	Expr           string
	DatasourceType string
	DatasourceUID  string
	PanelID        int64
	PanelTitle     string
	DashboardFile  string

	// FromTarget marks queries found under panels[].targets[]; query
	// expressions picked up elsewhere in the tree (annotations, alerts)
	// carry no editor fields and are exempt from target completeness.
	FromTarget bool

	// Target editor fields, used by the completeness rule.
	EditorMode string
	HasRange   bool
	HasInstant bool
}

// DatasourceRef is any datasource reference found while walking a dashboard
// tree, including panel-level references that carry no query.
type DatasourceRef struct {
	UID           string
	Type          string
	DashboardFile string
}

// TemplateVariable is a dashboard templating entry backed by the log backend.
type TemplateVariable struct {
	Name          string
	QueriedLabel  string
	DashboardFile string
}

// DatasourceDefinition is a provisioned datasource.
type DatasourceDefinition struct {
	Name string
	Type string
	UID  string
}

// LogLabel is a label name the log pipeline actually produces.
type LogLabel struct {
	Name string
}

// CatalogEntry is a documented metric heading.
type CatalogEntry struct {
	MetricName  string
	CatalogFile string
}
