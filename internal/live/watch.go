// Package live re-scans the mailbox when its local store changes,
// instead of waiting for the next scheduled scan.
package live

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options controls a watch loop.
type Options struct {
	// Path is the file or directory to watch (a maildir, an exported
	// mailbox file, or the himalaya sync dir).
	Path string
	// Debounce collapses bursts of filesystem events into one rescan.
	Debounce time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 2 * time.Second
	}
	return o
}

// Watch blocks watching the path and calling rescan after changes
// settle. An initial rescan runs before watching. Returns when the
// context is cancelled.
func Watch(ctx context.Context, opts Options, rescan func() error, logf func(format string, args ...any)) error {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	opts = opts.withDefaults()

	info, err := os.Stat(opts.Path)
	if err != nil {
		return fmt.Errorf("stat watch path: %w", err)
	}
	watchDir := opts.Path
	if !info.IsDir() {
		watchDir = filepath.Dir(opts.Path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watch %s: %w", watchDir, err)
	}

	logf("Watching for mailbox changes in %s (debounce: %s)", watchDir, opts.Debounce)

	runRescan := func() {
		if err := rescan(); err != nil {
			logf("[%s] rescan error: %v", time.Now().Format("15:04:05"), err)
		}
	}

	logf("[%s] Running initial scan...", time.Now().Format("15:04:05"))
	runRescan()

	var debounceTimer *time.Timer
	triggerRescan := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(opts.Debounce, runRescan)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// When watching a single file, ignore sibling churn.
			if !info.IsDir() && filepath.Base(event.Name) != filepath.Base(opts.Path) {
				continue
			}
			triggerRescan()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logf("[%s] Watch error: %v", time.Now().Format("15:04:05"), err)
		}
	}
}
