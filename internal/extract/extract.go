// Package extract turns heterogeneous artifact files into canonical
// entities. Each extractor is independent and tolerant of absent artifact
// classes: a missing directory yields zero entities and a logged skip,
// because partial artifact sets are a valid state during incremental
// rollout. A present-but-unparsable artifact is a hard error so a broken
// file can never silently pass validation.
package extract

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/obslint/obslint/internal/store"
)

// Extractor turns one artifact class into entities on the builder.
type Extractor interface {
	// Name identifies the extractor in logs and reports.
	Name() string
	// Extract scans the tree rooted at root. A missing artifact directory
	// is a skip, not an error.
	Extract(root string, b *store.Builder) error
}

// listFiles returns files under dir with the given extension, sorted, as
// paths relative to root. Returns (nil, false, nil) when dir is absent.
func listFiles(root, dir, ext string) ([]string, bool, error) {
	base := filepath.Join(root, dir)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, false, nil
	}
	var files []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, true, err
	}
	sort.Strings(files)
	return files, true, nil
}

// readLines loads a file as physical lines, preserving order.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
