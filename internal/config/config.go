// Package config loads the service registry and artifact paths. The
// registry (prefix, directory, label) is data, not code: new services are
// added here, never in the rules.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/obslint/obslint/internal/domain"
)

// Config holds application configuration
type Config struct {
	// Registered services: metric prefix -> owning directory.
	Services []ServiceConfig `mapstructure:"services"`

	// Artifact locations, relative to the validated root.
	Paths PathsConfig `mapstructure:"paths"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
}

// ServiceConfig is one service registration.
type ServiceConfig struct {
	Prefix string `mapstructure:"prefix"`
	Dir    string `mapstructure:"dir"`
	Label  string `mapstructure:"label"`
}

// PathsConfig locates each artifact class under the validated root.
type PathsConfig struct {
	Services     string `mapstructure:"services"`
	Dashboards   string `mapstructure:"dashboards"`
	Manifests    string `mapstructure:"manifests"`
	Provisioning string `mapstructure:"provisioning"`
	Docs         string `mapstructure:"docs"`
	Tests        string `mapstructure:"tests"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Services:     "services",
			Dashboards:   "grafana/dashboards",
			Manifests:    "deploy",
			Provisioning: "grafana/provisioning/datasources.yaml",
			Docs:         "docs",
			Tests:        "tests",
		},
	}
}

// Load loads configuration from files and environment.
// Config file search order (highest precedence first):
// 1. ./.obslint.yaml or ./.obslint.yml
// 2. ~/.obslint.yaml or ~/.obslint.yml
// 3. $XDG_CONFIG_HOME/obslint/config.yaml (or ~/.config/obslint/config.yaml)
// 4. /etc/obslint/config.yaml
func Load() (*Config, error) {
	configFile := findConfigFile()
	if configFile == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, cfg.Validate()
	}
	return LoadFromFile(configFile)
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, cfg.Validate()
}

// Validate enforces the registry invariant: prefixes are unique.
func (c *Config) Validate() error {
	seen := map[string]string{}
	for _, svc := range c.Services {
		if svc.Prefix == "" || svc.Dir == "" {
			return fmt.Errorf("service registration needs both prefix and dir: %+v", svc)
		}
		if prev, ok := seen[svc.Prefix]; ok {
			return fmt.Errorf("duplicate service prefix %q (dirs %q and %q)", svc.Prefix, prev, svc.Dir)
		}
		seen[svc.Prefix] = svc.Dir
	}
	return nil
}

// Registrations converts configured services into registry entities.
func (c *Config) Registrations() []domain.ServiceRegistration {
	regs := make([]domain.ServiceRegistration, 0, len(c.Services))
	for _, svc := range c.Services {
		regs = append(regs, domain.ServiceRegistration{
			Prefix:       svc.Prefix,
			Directory:    svc.Dir,
			DisplayLabel: svc.Label,
		})
	}
	return regs
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".obslint.yaml", ".obslint.yml", "obslint.yaml", "obslint.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "obslint"))
	}
	searchPaths = append(searchPaths, "/etc/obslint")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OBSLINT_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("OBSLINT_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("OBSLINT_SERVICES_DIR"); v != "" {
		cfg.Paths.Services = v
	}
	if v := os.Getenv("OBSLINT_DASHBOARDS_DIR"); v != "" {
		cfg.Paths.Dashboards = v
	}
	if v := os.Getenv("OBSLINT_MANIFESTS_DIR"); v != "" {
		cfg.Paths.Manifests = v
	}
	if v := os.Getenv("OBSLINT_TESTS_DIR"); v != "" {
		cfg.Paths.Tests = v
	}
}

// ConfigFile returns the path of the config file that would be loaded, or
// an empty string when only defaults apply.
func ConfigFile() string { return findConfigFile() }

// describe renders a service list for diagnostics.
func (c *Config) DescribeServices() string {
	if len(c.Services) == 0 {
		return "no services registered"
	}
	parts := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		parts = append(parts, fmt.Sprintf("%s -> %s", svc.Prefix, svc.Dir))
	}
	return strings.Join(parts, ", ")
}
