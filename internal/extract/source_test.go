package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSourceExtractor(t *testing.T) {
	t.Run("extracts metric macros and bucket configs", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "services/auth/src/metrics.rs", `
counter!("ac_token_issuance_total", 1);
histogram!("ac_request_duration_seconds", elapsed);
gauge!("ac_active_sessions", n);
registry.set_buckets_for_metric(
    Matcher::Prefix("ac_request_duration"),
    &[0.01, 0.1, 1.0],
);
`)
		b := store.NewBuilder()
		ex := &SourceExtractor{Dir: "services", Logger: zap.NewNop()}
		require.NoError(t, ex.Extract(root, b))
		s := b.Seal()

		require.Len(t, s.Metrics(), 3)
		m, ok := s.MetricByName("ac_request_duration_seconds")
		require.True(t, ok)
		assert.Equal(t, domain.MetricHistogram, m.Kind)
		assert.Equal(t, "ac", m.OwningPrefix)
		assert.Equal(t, filepath.Join("services", "auth", "src", "metrics.rs"), m.DefiningFile)
		assert.Equal(t, 3, m.DefiningLine)

		require.Len(t, s.BucketConfigs(), 1)
		assert.Equal(t, "ac_request_duration", s.BucketConfigs()[0].MatchedPrefix)
		assert.Equal(t, m.DefiningFile, s.BucketConfigs()[0].DefiningFile)
	})

	t.Run("tolerates the name on the line after the macro opener", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "services/gw/src/lib.rs", `
counter!(
    "gw_http_requests_total",
    "method" => method,
);
`)
		b := store.NewBuilder()
		ex := &SourceExtractor{Dir: "services", Logger: zap.NewNop()}
		require.NoError(t, ex.Extract(root, b))
		s := b.Seal()
		m, ok := s.MetricByName("gw_http_requests_total")
		require.True(t, ok)
		assert.Equal(t, domain.MetricCounter, m.Kind)
	})

	t.Run("matcher without a bucket call nearby is not a bucket config", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "services/gw/src/lib.rs", `
let m = Matcher::Prefix("gw_request");
// unrelated code follows
let a = 1;
let b = 2;
let c = 3;
let d = 4;
let e = 5;
`)
		b := store.NewBuilder()
		ex := &SourceExtractor{Dir: "services", Logger: zap.NewNop()}
		require.NoError(t, ex.Extract(root, b))
		assert.Empty(t, b.Seal().BucketConfigs())
	})

	t.Run("missing directory is a skip, not an error", func(t *testing.T) {
		b := store.NewBuilder()
		ex := &SourceExtractor{Dir: "services", Logger: zap.NewNop()}
		require.NoError(t, ex.Extract(t.TempDir(), b))
		assert.Empty(t, b.Seal().Metrics())
	})
}
