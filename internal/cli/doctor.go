package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	"github.com/obslint/obslint/internal/config"
)

// DoctorCmd checks configuration and artifact locations. Informational
// only; absent artifact classes are reported but never fail the run, since
// partial artifact sets are valid during rollout.
type DoctorCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
}

type doctorCheck struct {
	name    string
	status  string
	details string
}

func (c *DoctorCmd) Run(g *Globals) error {
	paths := g.Config.Paths
	checks := []doctorCheck{
		c.checkConfigFile(),
		c.checkServices(g),
		c.checkDir(c.Root, paths.Services, "services source"),
		c.checkDir(c.Root, paths.Dashboards, "dashboards"),
		c.checkDir(c.Root, paths.Manifests, "pipeline manifests"),
		c.checkFile(c.Root, paths.Provisioning, "datasource provisioning"),
		c.checkDir(c.Root, paths.Docs, "metric catalog"),
		c.checkDir(c.Root, paths.Tests, "test source"),
	}

	table := tablewriter.NewWriter(g.Stdout)
	table.Header("Check", "Status", "Details")
	for _, ch := range checks {
		table.Append([]string{ch.name, ch.status, ch.details})
	}
	table.Render()
	return nil
}

func (c *DoctorCmd) checkConfigFile() doctorCheck {
	if path := config.ConfigFile(); path != "" {
		return doctorCheck{"config file", "ok", path}
	}
	return doctorCheck{"config file", "absent", "using built-in defaults"}
}

func (c *DoctorCmd) checkServices(g *Globals) doctorCheck {
	if len(g.Config.Services) == 0 {
		return doctorCheck{"service registry", "empty", "registration rules will report every metric directory"}
	}
	return doctorCheck{"service registry", "ok", g.Config.DescribeServices()}
}

func (c *DoctorCmd) checkDir(root, dir, what string) doctorCheck {
	info, err := os.Stat(filepath.Join(root, dir))
	switch {
	case os.IsNotExist(err):
		return doctorCheck{what, "absent", fmt.Sprintf("%s missing; extractor will skip", dir)}
	case err != nil:
		return doctorCheck{what, "error", err.Error()}
	case !info.IsDir():
		return doctorCheck{what, "error", dir + " is not a directory"}
	default:
		return doctorCheck{what, "ok", dir}
	}
}

func (c *DoctorCmd) checkFile(root, file, what string) doctorCheck {
	if _, err := os.Stat(filepath.Join(root, file)); os.IsNotExist(err) {
		return doctorCheck{what, "absent", fmt.Sprintf("%s missing; extractor will skip", file)}
	} else if err != nil {
		return doctorCheck{what, "error", err.Error()}
	}
	return doctorCheck{what, "ok", file}
}
