package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/config"
	"github.com/obslint/obslint/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const greenDashboard = `{
  "title": "Auth",
  "panels": [
    {
      "type": "row",
      "title": "Tokens",
      "panels": [
        {
          "type": "timeseries",
          "id": 1,
          "title": "Issuance",
          "datasource": {"type": "prometheus", "uid": "prom-main"},
          "targets": [
            {
              "expr": "rate(ac_token_issuance_total[5m])",
              "range": true,
              "editorMode": "code"
            }
          ]
        }
      ]
    }
  ]
}`

const brokenDashboard = `{
  "title": "Auth",
  "panels": [
    {
      "type": "row",
      "title": "Tokens",
      "panels": [
        {
          "type": "timeseries",
          "id": 1,
          "title": "Issuance",
          "datasource": {"type": "prometheus", "uid": "prom-main"},
          "targets": [
            {
              "expr": "rate(ac_token_issuance_total[5m])",
              "range": true
            }
          ]
        }
      ]
    }
  ]
}`

const unverifiedTest = `#[tokio::test]
async fn checks_health() {
    let resp = client.get("/health").await;
    match resp.status() {
        200 => {
            let _body = resp.body();
        }
        _ => panic!("unexpected status"),
    }
}
`

type env struct {
	globals *Globals
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.Default()
	cfg.Services = []config.ServiceConfig{{Prefix: "ac", Dir: "services/auth", Label: "Auth"}}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &env{
		globals: &Globals{
			Logger: zap.NewNop(),
			Config: cfg,
			Stdout: stdout,
			Stderr: stderr,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// greenTree is a fixture that every rule passes on.
func greenTree(t *testing.T, dashboard string) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "services/auth/src/lib.rs",
		"pub fn record() {\n    counter!(\"ac_token_issuance_total\", \"tokens issued\");\n}\n")
	write(t, root, "grafana/dashboards/auth.json", dashboard)
	write(t, root, "grafana/provisioning/datasources.yaml",
		"apiVersion: 1\ndatasources:\n  - name: Prometheus\n    type: prometheus\n    uid: prom-main\n")
	write(t, root, "docs/metrics.md", "# Metrics\n\n### `ac_token_issuance_total`\n\nIssued tokens.\n")
	return root
}

func TestCheckCleanTree(t *testing.T) {
	e := newEnv(t)
	root := greenTree(t, greenDashboard)

	err := (&CheckCmd{Root: root}).Run(e.globals)
	require.NoError(t, err)
	assert.Contains(t, e.stdout.String(), "no violations found")
	assert.Contains(t, e.stdout.String(), "summary: errors=0 warnings=0 info=0 total=0")
}

func TestCheckFindsTargetInsideNestedRow(t *testing.T) {
	e := newEnv(t)
	root := greenTree(t, brokenDashboard)

	err := (&CheckCmd{Root: root}).Run(e.globals)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, report.ExitViolations, exitErr.Code)
	assert.Contains(t, e.stdout.String(), "target-fields")
	assert.Contains(t, e.stdout.String(), "editorMode")
}

func TestCheckReportsToolingFailure(t *testing.T) {
	e := newEnv(t)
	root := greenTree(t, `{"panels": [`)

	err := (&CheckCmd{Root: root}).Run(e.globals)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, report.ExitTooling, exitErr.Code)
	assert.Contains(t, e.stderr.String(), "tooling failure")
	assert.NotContains(t, e.stdout.String(), "summary:", "no report on tooling failure")
}

func TestCheckOutputIsIdempotent(t *testing.T) {
	root := greenTree(t, brokenDashboard)

	first := newEnv(t)
	_ = (&CheckCmd{Root: root}).Run(first.globals)
	second := newEnv(t)
	_ = (&CheckCmd{Root: root}).Run(second.globals)

	assert.Equal(t, first.stdout.String(), second.stdout.String())
}

func TestTestsCmd(t *testing.T) {
	e := newEnv(t)
	root := greenTree(t, greenDashboard)
	write(t, root, "tests/health.rs", unverifiedTest)

	err := (&TestsCmd{Root: root}).Run(e.globals)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, report.ExitViolations, exitErr.Code)
	assert.Contains(t, e.stdout.String(), "assertion-free-arm")
}

func TestScopedCommands(t *testing.T) {
	root := greenTree(t, brokenDashboard)

	t.Run("dashboards reports the finding", func(t *testing.T) {
		e := newEnv(t)
		err := (&DashboardsCmd{Root: root}).Run(e.globals)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, e.stdout.String(), "target-fields")
	})

	t.Run("metrics does not", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, (&MetricsCmd{Root: root}).Run(e.globals))
		assert.NotContains(t, e.stdout.String(), "target-fields")
	})

	t.Run("labels has nothing to flag", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, (&LabelsCmd{Root: root}).Run(e.globals))
	})
}

func TestVersionCmd(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, (&VersionCmd{}).Run(e.globals))
	assert.Contains(t, e.stdout.String(), "obslint version")
}
