package extract

import (
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/domain"
	"github.com/obslint/obslint/internal/store"
)

// ### `metric_name`
var catalogHeadingRe = regexp.MustCompile("^###\\s+`([a-zA-Z_][a-zA-Z0-9_]*)`\\s*$")

// CatalogExtractor scans documentation for metric catalog headings.
type CatalogExtractor struct {
	Dir    string
	Logger *zap.Logger
}

func (e *CatalogExtractor) Name() string { return "catalog" }

func (e *CatalogExtractor) Extract(root string, b *store.Builder) error {
	files, present, err := listFiles(root, e.Dir, ".md")
	if err != nil {
		return err
	}
	if !present {
		e.Logger.Info("skip: docs directory not found", zap.String("dir", e.Dir))
		return nil
	}
	count := 0
	for _, file := range files {
		lines, err := readLines(filepath.Join(root, file))
		if err != nil {
			return err
		}
		for _, line := range lines {
			if m := catalogHeadingRe.FindStringSubmatch(line); m != nil {
				b.AddCatalogEntry(domain.CatalogEntry{MetricName: m[1], CatalogFile: file})
				count++
			}
		}
	}
	e.Logger.Debug("catalog scan complete", zap.Int("files", len(files)), zap.Int("entries", count))
	return nil
}
