package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/obslint/obslint/internal/config"
)

// CLI is the root command structure for obslint
type CLI struct {
	// Global flags
	Verbose bool   `short:"v" help:"Show debug output (extractor progress, internal state)"`
	Quiet   bool   `short:"q" help:"Suppress log output (findings are still printed)"`
	NoColor bool   `help:"Disable colored output"`
	Config  string `short:"c" help:"Config file path (overrides the search path)" type:"path"`

	// Commands
	Check      CheckCmd      `cmd:"" default:"withargs" help:"Run every consistency check"`
	Metrics    MetricsCmd    `cmd:"" help:"Check metric registration, prefixes, coverage and buckets"`
	Dashboards DashboardsCmd `cmd:"" help:"Check dashboard queries, datasources and target fields"`
	Labels     LabelsCmd     `cmd:"" help:"Check log and metric label validity"`
	Tests      TestsCmd      `cmd:"" help:"Check test source for assertion-free branches"`
	Doctor     DoctorCmd     `cmd:"" help:"Check configuration and artifact locations"`
	Watch      WatchCmd      `cmd:"" help:"Re-run checks whenever artifacts change"`
	UI         UICmd         `cmd:"" help:"Browse findings interactively"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Logger *zap.Logger
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	Color  bool
}

// NewGlobals creates a new Globals instance from CLI flags and loaded config
func NewGlobals(cli *CLI, cfg *config.Config) *Globals {
	verbose := cli.Verbose || cfg.Verbose
	quiet := cli.Quiet || cfg.Quiet
	return &Globals{
		Logger: newLogger(verbose, quiet),
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  !cli.NoColor && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// newLogger builds the process logger. Findings go to stdout through the
// reporter; the logger writes to stderr only.
func newLogger(verbose, quiet bool) *zap.Logger {
	if quiet {
		return zap.NewNop()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ExitError carries the process exit status out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	fmt.Fprintf(globals.Stdout, "obslint version %s (%s)\n", Version, Commit)
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
