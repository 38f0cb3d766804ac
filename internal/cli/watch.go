package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/obslint/obslint/internal/rules"
)

// WatchCmd re-runs the full check whenever an artifact file changes.
// Events are debounced so editor save bursts trigger a single run.
type WatchCmd struct {
	Root     string        `arg:"" optional:"" default:"." help:"Root of the tree to validate"`
	Debounce time.Duration `default:"500ms" help:"Delay between a change and the re-run"`
}

// Run executes the watch command
func (c *WatchCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := c.addArtifactDirs(watcher, g); err != nil {
		return err
	}

	clk := clock.New()
	debounce := clk.Timer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}

	c.runOnce(g)
	fmt.Fprintln(g.Stderr, "obslint: watching for changes (ctrl-c to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				g.Logger.Debug("artifact changed", zap.String("file", ev.Name))
				debounce.Reset(c.Debounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.Logger.Warn("watch error", zap.Error(werr))
		case <-debounce.C:
			c.runOnce(g)
		}
	}
}

// runOnce runs the full check, keeping the loop alive on violations.
func (c *WatchCmd) runOnce(g *Globals) {
	err := runChecks(g, c.Root, rules.All(), true)
	var xe *ExitError
	if err != nil && !errors.As(err, &xe) {
		g.Logger.Warn("check failed", zap.Error(err))
	}
}

// addArtifactDirs registers every directory under each artifact root, since
// the watcher is not recursive.
func (c *WatchCmd) addArtifactDirs(watcher *fsnotify.Watcher, g *Globals) error {
	paths := g.Config.Paths
	roots := []string{
		paths.Services, paths.Dashboards, paths.Manifests,
		filepath.Dir(paths.Provisioning), paths.Docs, paths.Tests,
	}
	added := 0
	for _, dir := range roots {
		base := filepath.Join(c.Root, dir)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if err := watcher.Add(path); err != nil {
					return err
				}
				added++
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if added == 0 {
		return fmt.Errorf("no artifact directories to watch under %s", c.Root)
	}
	g.Logger.Debug("watching directories", zap.Int("count", added))
	return nil
}
