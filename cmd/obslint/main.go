package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/obslint/obslint/internal/cli"
	"github.com/obslint/obslint/internal/config"
	"github.com/obslint/obslint/internal/report"
)

const quickStart = `obslint - consistency checks across an observability stack

START HERE (this is the command you want):
  obslint check .

Other useful commands:
  obslint metrics .      Metric registration, prefixes, coverage, buckets
  obslint dashboards .   Dashboard queries, datasources, target fields
  obslint labels .       Log and metric label validity
  obslint tests .        Assertion-free test branches
  obslint doctor .       Check configuration and artifact locations
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("obslint"),
		kong.Description("Cross-artifact consistency validator for an observability stack\n\nSTART HERE: obslint check ."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	cfg, err := loadConfig(&c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "obslint: failed to load config: %v\n", err)
		os.Exit(report.ExitTooling)
	}

	globals := cli.NewGlobals(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		var xe *cli.ExitError
		if errors.As(err, &xe) {
			os.Exit(xe.Code)
		}
		fmt.Fprintf(os.Stderr, "obslint: %v\n", err)
		os.Exit(report.ExitTooling)
	}
}

func loadConfig(c *cli.CLI) (*config.Config, error) {
	if c.Config != "" {
		return config.LoadFromFile(c.Config)
	}
	return config.Load()
}
