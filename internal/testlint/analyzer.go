package testlint

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/domain"
)

// Analyzer runs every detector over the test source tree. It works on raw
// lines, independent of the entity store.
type Analyzer struct {
	Dir    string
	Logger *zap.Logger
}

// Analyze scans all test files under root. A missing tests directory is a
// skip, not an error.
func (a *Analyzer) Analyze(root string) ([]domain.Violation, error) {
	base := filepath.Join(root, a.Dir)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		a.Logger.Info("skip: tests directory not found", zap.String("dir", a.Dir))
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".rs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var out []domain.Violation
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		out = append(out, AnalyzeLines(rel, lines)...)
	}
	a.Logger.Debug("test analysis complete", zap.Int("files", len(files)), zap.Int("findings", len(out)))
	return out, nil
}

// AnalyzeLines runs every detector over one file's lines. Exposed so single
// files can be checked without touching the filesystem.
func AnalyzeLines(file string, lines []string) []domain.Violation {
	var out []domain.Violation
	for _, d := range allDetectors() {
		out = append(out, d(file, lines)...)
	}
	return out
}
