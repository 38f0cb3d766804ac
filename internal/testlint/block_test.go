package testlint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBlock(t *testing.T) {
	t.Run("single-line arm closes on its own line", func(t *testing.T) {
		lines := []string{
			`match status {`,
			`    200 => { if ok { assert!(body.valid); } }`,
			`    404 => { /* nothing */ }`,
			`}`,
		}
		block := resolveBlock("t.rs", lines, 1)
		assert.Equal(t, 2, block.StartLine)
		assert.Equal(t, 2, block.EndLine)
		assert.True(t, block.HasEnforcement)
	})

	t.Run("assertion belongs to its own arm only", func(t *testing.T) {
		lines := []string{
			`match status {`,
			`    200 => { if ok { assert!(body.valid); } }`,
			`    404 => { /* nothing */ }`,
			`}`,
		}
		block := resolveBlock("t.rs", lines, 2)
		assert.Equal(t, 3, block.StartLine)
		assert.Equal(t, 3, block.EndLine)
		assert.False(t, block.HasEnforcement)
	})

	t.Run("multi-line block with nesting", func(t *testing.T) {
		lines := []string{
			`    Ok(resp) => {`,
			`        let body = resp.body();`,
			`        if body.is_empty() {`,
			`            panic!("empty body");`,
			`        }`,
			`        assert_eq!(resp.status(), 200);`,
			`    }`,
			`    Err(e) => {}`,
		}
		block := resolveBlock("t.rs", lines, 0)
		assert.Equal(t, 1, block.StartLine)
		assert.Equal(t, 7, block.EndLine)
		assert.True(t, block.HasEnforcement)
	})

	t.Run("unclosed block terminates at the lookahead bound", func(t *testing.T) {
		lines := []string{`    200 => {`}
		for i := 0; i < 50; i++ {
			lines = append(lines, `        let x = 1;`)
		}
		block := resolveBlock("t.rs", lines, 0)
		assert.Equal(t, maxBlockLines, block.EndLine)
		assert.False(t, block.HasEnforcement)
	})

	t.Run("escaped braces do not affect depth", func(t *testing.T) {
		lines := []string{
			`    200 => {`,
			`        let s = "\{";`,
			`        assert!(true);`,
			`    }`,
		}
		block := resolveBlock("t.rs", lines, 0)
		assert.Equal(t, 4, block.EndLine)
		assert.True(t, block.HasEnforcement)
	})
}

func TestIsCheckedArm(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"numeric status arm", `    200 => {`, true},
		{"ok arm", `    Ok(resp) => {`, true},
		{"err arm with status", `    Err(StatusError(500)) => {`, true},
		{"err arm without status", `    Err(e) => {`, false},
		{"wildcard arm", `    _ => {`, false},
		{"two-digit literal", `    42 => {`, false},
		{"arm without block", `    200 => panic!("no"),`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCheckedArm(tt.line))
		})
	}
}

func TestDetectUnverifiedArms(t *testing.T) {
	src := `
match status {
    200 => { if ok { assert!(y); } }
    404 => { /* nothing */ }
}
`
	lines := strings.Split(src, "\n")
	got := detectUnverifiedArms("t.rs", lines)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
	assert.Contains(t, got[0].Message, "no assertion")
}
