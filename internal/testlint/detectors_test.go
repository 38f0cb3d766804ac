package testlint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEarlyReturns(t *testing.T) {
	t.Run("return within four lines of availability check is flagged", func(t *testing.T) {
		lines := []string{
			`    if !server.is_available() {`, // line 1
			`        let _ = 0;`,
			`        let _ = 0;`,
			`        let _ = 0;`,
			`        return;`, // line 5, exactly 4 after the check
		}
		got := detectEarlyReturns("t.rs", lines)
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Line)
	})

	t.Run("return five lines after availability check is not flagged", func(t *testing.T) {
		lines := []string{
			`    if !server.is_available() {`,
			`        let _ = 0;`,
			`        let _ = 0;`,
			`        let _ = 0;`,
			`        let _ = 0;`,
			`        return;`,
		}
		assert.Empty(t, detectEarlyReturns("t.rs", lines))
	})

	t.Run("return within three lines of a skip message is flagged", func(t *testing.T) {
		lines := []string{
			`    println!("skipping: feature disabled");`,
			`    let _ = 0;`,
			`    let _ = 0;`,
			`    return;`,
		}
		got := detectEarlyReturns("t.rs", lines)
		require.Len(t, got, 1)
	})

	t.Run("bare return with no nearby check is fine", func(t *testing.T) {
		lines := []string{
			`    let x = compute();`,
			`    return;`,
		}
		assert.Empty(t, detectEarlyReturns("t.rs", lines))
	})
}

func TestDetectWarningAsAssertion(t *testing.T) {
	t.Run("lone warning is flagged", func(t *testing.T) {
		lines := []string{
			`    let status = resp.status();`,
			`    warn!("unexpected status {}", status);`,
		}
		got := detectWarningAsAssertion("t.rs", lines)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Line)
	})

	t.Run("warning followed by return is owned by the early-return detector", func(t *testing.T) {
		lines := []string{
			`    warn!("server not reachable");`,
			`    return;`,
		}
		assert.Empty(t, detectWarningAsAssertion("t.rs", lines))
	})

	t.Run("warning after a real assertion is incidental", func(t *testing.T) {
		lines := []string{
			`    assert_eq!(resp.status(), 200);`,
			`    warn!("latency was high");`,
		}
		assert.Empty(t, detectWarningAsAssertion("t.rs", lines))
	})
}

func TestDetectAspirationalLanguage(t *testing.T) {
	t.Run("phrase on executable line is flagged", func(t *testing.T) {
		lines := []string{
			`    println!("this would verify the response shape");`,
		}
		got := detectAspirationalLanguage("t.rs", lines)
		require.Len(t, got, 1)
	})

	t.Run("comment-only line is exempt", func(t *testing.T) {
		lines := []string{
			`    // in a real test we would verify the payload here`,
			`    assert!(resp.ok());`,
		}
		assert.Empty(t, detectAspirationalLanguage("t.rs", lines))
	})
}

func TestDetectMultiStatusAcceptance(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"two codes accepted", `    assert!(status == 200 || status == 404);`, 1},
		{"single code", `    assert!(status == 200);`, 0},
		{"two codes without assertion", `    let ok = status == 200 || status == 404;`, 0},
		{"conjunction is fine", `    assert!(status == 200 && body.ok);`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectMultiStatusAcceptance("t.rs", []string{tt.line})
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDetectPlaceholderStubs(t *testing.T) {
	t.Run("stub without ignore marker is flagged", func(t *testing.T) {
		lines := []string{
			`fn test_checkout_flow() {`,
			`    todo!()`,
			`}`,
		}
		got := detectPlaceholderStubs("t.rs", lines)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Line)
	})

	t.Run("stub under an ignore marker is allowed", func(t *testing.T) {
		lines := []string{
			`#[ignore]`,
			`fn test_checkout_flow() {`,
			`    unimplemented!()`,
			`}`,
		}
		assert.Empty(t, detectPlaceholderStubs("t.rs", lines))
	})
}

func TestAnalyzeLines(t *testing.T) {
	lines := []string{
		`match resp {`,
		`    Ok(r) => {`,
		`        warn!("got {}", r.status());`,
		`    }`,
		`    Err(e) => {}`,
		`}`,
	}
	got := AnalyzeLines("t.rs", lines)
	detectors := map[string]bool{}
	for _, v := range got {
		detectors[v.Detector] = true
	}
	assert.True(t, detectors["assertion-free-arm"])
	assert.True(t, detectors["warning-as-assertion"])
}
