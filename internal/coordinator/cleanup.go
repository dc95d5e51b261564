package coordinator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

// CleanupResult reports which worktree paths were actually removed.
type CleanupResult struct {
	Removed []string
}

// Cleanup removes the worktree (and any residual directory) of every
// target epic, explicit or all completed.
func (c *Coordinator) Cleanup(ctx context.Context, epicIDs []string) (*CleanupResult, error) {
	result := &CleanupResult{}
	err := c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}

		var targets []*planmodel.Epic
		if len(epicIDs) > 0 {
			var missing []string
			for _, id := range epicIDs {
				e := g.EpicByID(id)
				if e == nil {
					missing = append(missing, id)
					continue
				}
				targets = append(targets, e)
			}
			if len(missing) > 0 {
				return &planerrors.NotFoundError{Kind: "epic", IDs: missing}
			}
		} else {
			for _, e := range g.Epics {
				if e.Status == planmodel.StatusCompleted {
					targets = append(targets, e)
				}
			}
		}

		changed := false
		for _, e := range targets {
			if e.Worktree == "" {
				continue
			}
			worktreePath := filepath.Join(c.ProjectRoot, e.Worktree)
			if res := c.Git.Remove(ctx, c.ProjectRoot, worktreePath); !res.Ok() {
				return &planerrors.RemoveFailedError{EpicID: e.ID, GitError: &planerrors.GitError{
					Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
				}}
			}
			os.RemoveAll(worktreePath)
			result.Removed = append(result.Removed, worktreePath)
			e.Worktree = ""
			changed = true
		}

		if changed {
			return c.save(g)
		}
		return nil
	})
	return result, err
}
