package testlint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/obslint/obslint/internal/domain"
)

// Detector windows, in lines. Each bound exists so pathological input
// cannot cause an unbounded scan.
const (
	availabilityReturnWindow = 4  // bare return after an availability check
	skipReturnWindow         = 3  // bare return after a skip message
	warnReturnWindow         = 5  // return following a warning log
	warnAssertWindow         = 15 // assertion preceding a warning log
	stubIgnoreWindow         = 15 // ignore marker preceding a stub
)

var (
	bareReturnRe   = regexp.MustCompile(`^\s*return\s*;\s*$`)
	availabilityRe = regexp.MustCompile(`(?i)is[_\s]?available`)
	skipMessageRe  = regexp.MustCompile(`(?i)skip|not available|unavailable`)
	warnLogRe      = regexp.MustCompile(`\b(?:log::)?warn!\s*\(|eprintln!\s*\(\s*"[Ww]arn`)
	stubRe         = regexp.MustCompile(`\b(?:todo!|unimplemented!)\s*\(`)
	ignoreMarkerRe = regexp.MustCompile(`#\[\s*ignore`)
	statusCodeRe   = regexp.MustCompile(`\b\d{3}\b`)
)

// aspirationalPhrases are literal phrases that describe verification
// instead of performing it. They are violations on executable lines;
// comment-only lines documenting intent are exempt.
var aspirationalPhrases = []string{
	"would verify",
	"would assert",
	"would check",
	"should verify",
	"in a real test",
	"not enforced",
}

// detector is one bounded-window scan over the lines of a test file.
type detector func(file string, lines []string) []domain.Violation

func allDetectors() []detector {
	return []detector{
		detectUnverifiedArms,
		detectEarlyReturns,
		detectWarningAsAssertion,
		detectAspirationalLanguage,
		detectMultiStatusAcceptance,
		detectPlaceholderStubs,
	}
}

// detectUnverifiedArms resolves the block of every checked match arm and
// reports arms with no enforcement statement inside.
func detectUnverifiedArms(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		if !isCheckedArm(line) {
			continue
		}
		block := resolveBlock(file, lines, i)
		if block.HasEnforcement {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "assertion-free-arm",
			Message:  fmt.Sprintf("match arm has no assertion (block lines %d-%d)", block.StartLine, block.EndLine),
			File:     file,
			Line:     i + 1,
			Hint:     "assert on the response inside the arm, or fail explicitly",
		})
	}
	return out
}

// detectEarlyReturns flags bare returns that silently end a test shortly
// after an availability check or a skip message.
func detectEarlyReturns(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		if !bareReturnRe.MatchString(line) {
			continue
		}
		if !anyMatchBefore(lines, i, availabilityReturnWindow, availabilityRe) &&
			!anyMatchBefore(lines, i, skipReturnWindow, skipMessageRe) {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "early-return",
			Message:  "test returns early instead of failing when the checked feature is unavailable",
			File:     file,
			Line:     i + 1,
			Hint:     "fail or mark the test ignored instead of returning silently",
		})
	}
	return out
}

// detectWarningAsAssertion flags warning logs standing in for assertions.
// A warning is fine when a return follows shortly (the early-return
// detector owns that case) or when a real assertion precedes it.
func detectWarningAsAssertion(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		if !warnLogRe.MatchString(line) {
			continue
		}
		if anyMatchAfter(lines, i, warnReturnWindow, bareReturnRe) {
			continue
		}
		if anyMatchBefore(lines, i, warnAssertWindow, enforcementRe) {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "warning-as-assertion",
			Message:  "warning log used where an assertion is expected",
			File:     file,
			Line:     i + 1,
			Hint:     "replace the warning with an assertion on the observed value",
		})
	}
	return out
}

// detectAspirationalLanguage flags phrases that describe verification
// without performing it, on executable lines only.
func detectAspirationalLanguage(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		code := executablePart(line)
		if code == "" {
			continue
		}
		lower := strings.ToLower(code)
		for _, phrase := range aspirationalPhrases {
			if !strings.Contains(lower, phrase) {
				continue
			}
			out = append(out, domain.Violation{
				Severity: domain.SeverityError,
				Detector: "aspirational",
				Message:  fmt.Sprintf("executable line contains non-enforcement language %q", phrase),
				File:     file,
				Line:     i + 1,
				Hint:     "implement the verification or remove the aspirational statement",
			})
			break
		}
	}
	return out
}

// detectMultiStatusAcceptance flags assertions that disjunctively accept
// two or more literal status codes; such an assertion cannot distinguish
// intended behavior from an unrelated failure.
func detectMultiStatusAcceptance(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		if !enforcementRe.MatchString(line) || !strings.Contains(line, "||") {
			continue
		}
		if len(statusCodeRe.FindAllString(line, -1)) < 2 {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "multi-status",
			Message:  "assertion accepts multiple status codes",
			File:     file,
			Line:     i + 1,
			Hint:     "assert the single expected status code",
		})
	}
	return out
}

// detectPlaceholderStubs flags unimplemented-body markers in tests unless a
// skip marker precedes them.
func detectPlaceholderStubs(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for i, line := range lines {
		if !stubRe.MatchString(executablePart(line)) {
			continue
		}
		if anyMatchBefore(lines, i, stubIgnoreWindow, ignoreMarkerRe) {
			continue
		}
		out = append(out, domain.Violation{
			Severity: domain.SeverityError,
			Detector: "placeholder-stub",
			Message:  "test body is an unimplemented placeholder",
			File:     file,
			Line:     i + 1,
			Hint:     "implement the test or mark it #[ignore]",
		})
	}
	return out
}

// anyMatchBefore reports whether re matches within the window lines
// directly preceding index i.
func anyMatchBefore(lines []string, i, window int, re *regexp.Regexp) bool {
	for j := i - window; j < i; j++ {
		if j >= 0 && re.MatchString(lines[j]) {
			return true
		}
	}
	return false
}

// anyMatchAfter reports whether re matches within the window lines directly
// following index i.
func anyMatchAfter(lines []string, i, window int, re *regexp.Regexp) bool {
	for j := i + 1; j <= i+window && j < len(lines); j++ {
		if re.MatchString(lines[j]) {
			return true
		}
	}
	return false
}

// executablePart strips line comments; a line that is only a comment is not
// executable. Comment markers inside string literals are miscounted by
// design of the line-oriented approach.
func executablePart(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
