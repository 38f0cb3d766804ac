package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

var (
	// counter!("name", ...) / histogram!("name", ...) / gauge!("name", ...)
	metricMacroRe = regexp.MustCompile(`\b(counter|histogram|gauge)!\s*\(\s*"([a-zA-Z_][a-zA-Z0-9_]*)"`)
	// Macro opener with the name on a following line.
	metricOpenRe  = regexp.MustCompile(`\b(counter|histogram|gauge)!\s*\(\s*$`)
	metricNameRe  = regexp.MustCompile(`^\s*"([a-zA-Z_][a-zA-Z0-9_]*)"`)
	bucketMatchRe = regexp.MustCompile(`Matcher::Prefix\(\s*"([a-zA-Z_][a-zA-Z0-9_]*)"`)
	bucketCallRe  = regexp.MustCompile(`buckets`)
)

// nameLookahead bounds how far a metric name may trail its macro opener.
const nameLookahead = 3

// bucketPairWindow bounds how far a bucket-setting call may be from its
// Matcher::Prefix registration.
const bucketPairWindow = 5

// SourceExtractor scans service source for metric macro invocations and
// histogram bucket registrations. Matching is line-oriented; macro-generated
// names are out of scope.
type SourceExtractor struct {
	Dir    string
	Logger *zap.Logger
}

func (e *SourceExtractor) Name() string { return "source-metrics" }

func (e *SourceExtractor) Extract(root string, b *store.Builder) error {
	files, present, err := listFiles(root, e.Dir, ".rs")
	if err != nil {
		return err
	}
	if !present {
		e.Logger.Info("skip: services directory not found", zap.String("dir", e.Dir))
		return nil
	}
	for _, file := range files {
		lines, err := readLines(filepath.Join(root, file))
		if err != nil {
			return err
		}
		e.scanFile(file, lines, b)
	}
	e.Logger.Debug("source scan complete", zap.Int("files", len(files)))
	return nil
}

func (e *SourceExtractor) scanFile(file string, lines []string, b *store.Builder) {
	for i, line := range lines {
		if m := metricMacroRe.FindStringSubmatch(line); m != nil {
			b.AddMetric(newMetric(m[1], m[2], file, i+1))
			continue
		}
		// Multi-line invocation: the quoted name follows the opener.
		if m := metricOpenRe.FindStringSubmatch(line); m != nil {
			for j := i + 1; j < len(lines) && j <= i+nameLookahead; j++ {
				if n := metricNameRe.FindStringSubmatch(lines[j]); n != nil {
					b.AddMetric(newMetric(m[1], n[1], file, i+1))
					break
				}
				if strings.TrimSpace(lines[j]) != "" {
					break
				}
			}
			continue
		}
		if m := bucketMatchRe.FindStringSubmatch(line); m != nil {
			if e.pairedWithBucketCall(lines, i) {
				b.AddBucketConfig(domain.BucketConfig{
					MatchedPrefix: m[1],
					DefiningFile:  file,
					DefiningLine:  i + 1,
				})
			}
		}
	}
}

// pairedWithBucketCall reports whether a bucket-setting call appears within
// the window around the matcher line. The matcher is usually an argument of
// the call, so the call may precede it.
func (e *SourceExtractor) pairedWithBucketCall(lines []string, idx int) bool {
	for j := idx - bucketPairWindow; j <= idx+bucketPairWindow; j++ {
		if j < 0 || j >= len(lines) {
			continue
		}
		if bucketCallRe.MatchString(lines[j]) {
			return true
		}
	}
	return false
}

func newMetric(kind, name, file string, line int) domain.Metric {
	return domain.Metric{
		Name:         name,
		Kind:         domain.MetricKind(kind),
		DefiningFile: file,
		DefiningLine: line,
		OwningPrefix: domain.OwningPrefix(name),
	}
}
