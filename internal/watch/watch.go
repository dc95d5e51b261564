// Package watch attaches an fsnotify.Watcher to a project's plan.yaml
// (and, inside a worktree, its local .epic-marker) so that "status
// --watch"/"next --watch" can re-render on every write. It runs in the
// foreground of a single command invocation and exits on context
// cancellation or Ctrl-C — there is no background process outlasting the
// command.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceInterval coalesces bursts of filesystem events (e.g. a plan
// save that touches both the temp file and the final rename) into a
// single render.
const DebounceInterval = 150 * time.Millisecond

// Watch blocks, calling render whenever plan.yaml (or, if worktreePath is
// non-empty, its marker file) changes, until ctx is canceled. render is
// also called once immediately on entry so the first view is never
// blank.
func Watch(ctx context.Context, projectRoot, worktreePath string, render func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(projectRoot); err != nil {
		return err
	}
	if worktreePath != "" && worktreePath != projectRoot {
		if err := watcher.Add(worktreePath); err != nil {
			return err
		}
	}

	planPath := filepath.Join(projectRoot, "plan.yaml")
	markerPath := filepath.Join(worktreePath, ".epic-marker")

	render()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != planPath && !(worktreePath != "" && ev.Name == markerPath) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(DebounceInterval, render)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}
