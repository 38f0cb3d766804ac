// Package testlint detects test code that structurally looks like it
// verifies behavior but contains no actual assertion. It operates on raw
// source lines with brace-depth counting and bounded lookahead rather than
// a real parser; braces inside string or comment literals can miscount
// block boundaries. That is an accepted limitation of the approach.
package testlint

import (
	"regexp"
	"strings"
)

// maxBlockLines bounds the forward scan so malformed input cannot cause an
// unbounded walk.
const maxBlockLines = 30

// CodeBlock is the resolved textual extent of one match arm. Computed on
// demand; never persisted.
type CodeBlock struct {
	File           string
	StartLine      int // 1-based, the arm line
	EndLine        int // 1-based, inclusive
	HasEnforcement bool
}

// enforcementRe matches an assertion or unconditional-failure statement.
var enforcementRe = regexp.MustCompile(`\b(?:assert(?:_eq|_ne)?!|panic!|unreachable!)\s*\(`)

// Match-arm shapes that must contain an enforcement statement.
var (
	numericArmRe = regexp.MustCompile(`^\s*\d{3}\s*=>\s*\{`)
	okArmRe      = regexp.MustCompile(`^\s*Ok\(.*\)\s*=>\s*\{`)
	errArmRe     = regexp.MustCompile(`^\s*Err\(.*\b\d{3}\b.*\)\s*=>\s*\{`)
)

// isCheckedArm reports whether a line opens a match arm the analyzer cares
// about: a literal status code, an Ok(...) arm, or an Err(...) arm carrying
// a literal status code.
func isCheckedArm(line string) bool {
	return numericArmRe.MatchString(line) || okArmRe.MatchString(line) || errArmRe.MatchString(line)
}

// resolveBlock scans forward from the arm line, incrementing and
// decrementing a depth counter on every unescaped brace, and terminates
// when depth returns to zero or after maxBlockLines lines. start is the
// 0-based index of the arm line.
func resolveBlock(file string, lines []string, start int) CodeBlock {
	block := CodeBlock{File: file, StartLine: start + 1}
	depth := 0
	opened := false
	for i := start; i < len(lines) && i-start < maxBlockLines; i++ {
		text := lines[i]
		if i == start {
			// Skip the arm pattern; counting begins at the block opener.
			if idx := strings.Index(text, "=>"); idx >= 0 {
				text = text[idx:]
			}
		}
		depth += braceDelta(text)
		if depth > 0 {
			opened = true
		}
		if enforcementRe.MatchString(text) {
			block.HasEnforcement = true
		}
		if opened && depth <= 0 {
			block.EndLine = i + 1
			return block
		}
	}
	end := start + maxBlockLines
	if end > len(lines) {
		end = len(lines)
	}
	block.EndLine = end
	return block
}

// braceDelta counts unescaped braces on a line.
func braceDelta(line string) int {
	delta := 0
	for i := 0; i < len(line); i++ {
		if i > 0 && line[i-1] == '\\' {
			continue
		}
		switch line[i] {
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}
