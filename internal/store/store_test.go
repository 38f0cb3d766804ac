package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obslint/obslint/internal/domain"
)

func TestResolveMetric(t *testing.T) {
	b := NewBuilder()
	b.AddMetric(domain.Metric{Name: "gw_latency_seconds", Kind: domain.MetricHistogram})
	b.AddMetric(domain.Metric{Name: "ac_tokens_total", Kind: domain.MetricCounter})
	s := b.Seal()

	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{"exact", "ac_tokens_total", "ac_tokens_total", true},
		{"bucket suffix", "gw_latency_seconds_bucket", "gw_latency_seconds", true},
		{"count suffix", "gw_latency_seconds_count", "gw_latency_seconds", true},
		{"sum suffix", "gw_latency_seconds_sum", "gw_latency_seconds", true},
		{"suffix on unknown base", "nope_bucket", "", false},
		{"unknown", "gw_latency_millis", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := s.ResolveMetric(tt.query)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, m.Name)
		})
	}
}

func TestReferenceNames(t *testing.T) {
	h := domain.Metric{Name: "gw_latency_seconds", Kind: domain.MetricHistogram}
	assert.Equal(t, []string{
		"gw_latency_seconds",
		"gw_latency_seconds_bucket",
		"gw_latency_seconds_count",
		"gw_latency_seconds_sum",
	}, ReferenceNames(h))

	c := domain.Metric{Name: "ac_tokens_total", Kind: domain.MetricCounter}
	assert.Equal(t, []string{"ac_tokens_total"}, ReferenceNames(c))
}

func TestSealSortsAndMerges(t *testing.T) {
	a := NewBuilder()
	a.AddMetric(domain.Metric{Name: "z_last_total"})
	a.AddInfraLabel("pod")

	other := NewBuilder()
	other.AddMetric(domain.Metric{Name: "a_first_total"})
	other.AddInfraLabel("pod")
	other.AddInfraLabel("namespace")

	a.Merge(other)
	s := a.Seal()

	assert.Equal(t, []string{"a_first_total", "z_last_total"}, s.MetricNames())
	assert.Equal(t, 2, s.InfraLabelCount(), "infra labels are a set")
	assert.True(t, s.HasInfraLabel("namespace"))
}
