package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "services", cfg.Paths.Services)
	assert.Equal(t, "grafana/dashboards", cfg.Paths.Dashboards)
	assert.Equal(t, "deploy", cfg.Paths.Manifests)
	assert.Equal(t, "docs", cfg.Paths.Docs)
	assert.Equal(t, "tests", cfg.Paths.Tests)
	assert.Empty(t, cfg.Services)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".obslint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
services:
  - prefix: ac
    dir: services/auth
    label: Auth
  - prefix: gw
    dir: services/gateway
paths:
  dashboards: boards
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Services, 2)
	assert.Equal(t, "ac", cfg.Services[0].Prefix)
	assert.Equal(t, "services/auth", cfg.Services[0].Dir)
	assert.Equal(t, "boards", cfg.Paths.Dashboards)
	// Unset paths keep their defaults.
	assert.Equal(t, "services", cfg.Paths.Services)

	regs := cfg.Registrations()
	require.Len(t, regs, 2)
	assert.Equal(t, "Auth", regs[0].DisplayLabel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		services []ServiceConfig
		wantErr  string
	}{
		{"empty registry", nil, ""},
		{"unique prefixes", []ServiceConfig{
			{Prefix: "ac", Dir: "services/auth"},
			{Prefix: "gw", Dir: "services/gateway"},
		}, ""},
		{"duplicate prefix", []ServiceConfig{
			{Prefix: "ac", Dir: "services/auth"},
			{Prefix: "ac", Dir: "services/accounts"},
		}, "duplicate service prefix"},
		{"missing dir", []ServiceConfig{{Prefix: "ac"}}, "prefix and dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Services = tt.services
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OBSLINT_VERBOSE", "1")
	t.Setenv("OBSLINT_DASHBOARDS_DIR", "custom/boards")

	cfg := Default()
	applyEnvOverrides(cfg)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "custom/boards", cfg.Paths.Dashboards)
}

func TestDescribeServices(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "no services registered", cfg.DescribeServices())

	cfg.Services = []ServiceConfig{{Prefix: "ac", Dir: "services/auth"}}
	assert.Equal(t, "ac -> services/auth", cfg.DescribeServices())
}
