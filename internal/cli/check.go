package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/extract"
	"github.com/obslint/obslint/internal/report"
	"github.com/obslint/obslint/internal/rules"
	"github.com/obslint/obslint/internal/store"
	"github.com/obslint/obslint/internal/testlint"
)

// CheckCmd runs every rule and the test analyzer.
type CheckCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

func (c *CheckCmd) Run(g *Globals) error {
	return runChecks(g, c.Root, rules.All(), true)
}

// MetricsCmd runs the metric-side rules.
type MetricsCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

func (c *MetricsCmd) Run(g *Globals) error {
	return runChecks(g, c.Root, rules.Metrics(), false)
}

// DashboardsCmd runs the dashboard-side rules.
type DashboardsCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

func (c *DashboardsCmd) Run(g *Globals) error {
	return runChecks(g, c.Root, rules.Dashboards(), false)
}

// LabelsCmd runs the label-validity rules.
type LabelsCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

func (c *LabelsCmd) Run(g *Globals) error {
	return runChecks(g, c.Root, rules.Labels(), false)
}

// TestsCmd runs only the structural test analyzer.
type TestsCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

func (c *TestsCmd) Run(g *Globals) error {
	return runChecks(g, c.Root, nil, true)
}

// runChecks is the one driver: extract, seal, validate, report, compute
// exit status.
func runChecks(g *Globals, root string, ruleSet []rules.Rule, withAnalyzer bool) error {
	violations, err := collectViolations(g, root, ruleSet, withAnalyzer)
	if err != nil {
		fmt.Fprintf(g.Stderr, "obslint: tooling failure: %v\n", err)
		return &ExitError{Code: report.ExitTooling}
	}
	r := &report.Reporter{Out: g.Stdout, Color: g.Color}
	r.Print(violations)
	if code := report.ExitCode(violations); code != report.ExitClean {
		return &ExitError{Code: code}
	}
	return nil
}

// collectViolations runs extractors concurrently, seals the store once all
// have finished, then runs the rules and the analyzer over it.
func collectViolations(g *Globals, root string, ruleSet []rules.Rule, withAnalyzer bool) ([]domain.Violation, error) {
	paths := g.Config.Paths
	extractors := []extract.Extractor{
		&extract.SourceExtractor{Dir: paths.Services, Logger: g.Logger},
		&extract.DashboardExtractor{Dir: paths.Dashboards, Logger: g.Logger},
		&extract.PipelineExtractor{Dir: paths.Manifests, Logger: g.Logger},
		&extract.ProvisioningExtractor{File: paths.Provisioning, Logger: g.Logger},
		&extract.CatalogExtractor{Dir: paths.Docs, Logger: g.Logger},
	}

	// Extractors are independent over disjoint file sets; each fills its
	// own builder. The merge below is the barrier: no rule sees the store
	// before it is fully populated.
	builders := make([]*store.Builder, len(extractors))
	grp, _ := errgroup.WithContext(context.Background())
	for i, ex := range extractors {
		grp.Go(func() error {
			builders[i] = store.NewBuilder()
			if err := ex.Extract(root, builders[i]); err != nil {
				return fmt.Errorf("%s: %w", ex.Name(), err)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	merged := store.NewBuilder()
	for _, reg := range g.Config.Registrations() {
		merged.AddRegistration(reg)
	}
	for _, b := range builders {
		merged.Merge(b)
	}
	s := merged.Seal()

	var violations []domain.Violation
	for _, rule := range ruleSet {
		found := rule.Check(s)
		g.Logger.Debug("rule complete", zap.String("rule", rule.Name()), zap.Int("findings", len(found)))
		violations = append(violations, found...)
	}
	if withAnalyzer {
		a := &testlint.Analyzer{Dir: paths.Tests, Logger: g.Logger}
		found, err := a.Analyze(root)
		if err != nil {
			return nil, err
		}
		violations = append(violations, found...)
	}
	return violations, nil
}
