package coordinator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MBFrosty/planctl/internal/marker"
	"github.com/MBFrosty/planctl/internal/planconfig"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

// ignoreFileName is the project ignore file .worktrees is appended to.
const ignoreFileName = ".gitignore"

const ignoreCommitMessage = "chore: ignore .worktrees"

// VerifyOptions configures Expand's post-create verification step.
// Command is resolved by the caller (command surface); this core never
// guesses a package manager.
type VerifyOptions struct {
	Command []string
	// Strict rolls back only the worktrees created by this invocation
	// when verification fails. The default (Strict=false) leaves created
	// worktrees in place for inspection.
	Strict bool
}

// ExpandResult reports what Expand actually created.
type ExpandResult struct {
	Created []string // epic ids that got a new worktree this invocation
}

// Expand creates an isolated per-epic worktree for every epic that is
// currently ready.
func (c *Coordinator) Expand(ctx context.Context, verify *VerifyOptions) (*ExpandResult, error) {
	result := &ExpandResult{}
	err := c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}

		if err := c.ensureWorktreesIgnored(ctx); err != nil {
			return err
		}

		ready := planmodel.ParallelTasks(g)
		currentBranch, res := c.Git.CurrentBranch(ctx, c.ProjectRoot)
		if !res.Ok() {
			return &planerrors.GitError{Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode}
		}

		for _, e := range ready {
			if e.Worktree != "" {
				continue
			}
			worktreePath := planconfig.WorktreePath(c.ProjectRoot, e.ID)
			if res := c.Git.Add(ctx, c.ProjectRoot, worktreePath, e.ID); !res.Ok() {
				return &planerrors.GitError{Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode}
			}

			m := &marker.Marker{
				Epic:         e.ID,
				BaseWorktree: c.ProjectRoot,
				BaseBranch:   currentBranch,
				Local:        marker.Local{Status: string(planmodel.StatusInProgress), StartedAt: time.Now().UTC()},
			}
			if err := marker.Write(worktreePath, m); err != nil {
				return fmt.Errorf("writing marker for epic %q: %w", e.ID, err)
			}

			relPath, relErr := filepath.Rel(c.ProjectRoot, worktreePath)
			if relErr != nil {
				relPath = worktreePath
			}
			e.Worktree = relPath
			e.Status = planmodel.StatusInProgress
			result.Created = append(result.Created, e.ID)

			// Save after each successful creation so a later epic's git
			// failure still leaves earlier worktrees recorded.
			if err := c.save(g); err != nil {
				return err
			}
		}

		if verify != nil && len(verify.Command) > 0 {
			if err := c.verifyCreated(ctx, g, result.Created, verify); err != nil {
				return err
			}
		}
		return nil
	})
	return result, err
}

func (c *Coordinator) ensureWorktreesIgnored(ctx context.Context) error {
	ignored, res := c.Git.CheckIgnored(ctx, c.ProjectRoot, planconfig.WorktreesDirName)
	if res.ExitCode > 1 {
		return &planerrors.IgnoreUpdateFailedError{Err: &planerrors.GitError{
			Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
		}}
	}
	if ignored {
		return nil
	}

	path := filepath.Join(c.ProjectRoot, ignoreFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &planerrors.IgnoreUpdateFailedError{Err: err}
	}
	_, werr := fmt.Fprintln(f, planconfig.WorktreesDirName)
	cerr := f.Close()
	if werr != nil {
		return &planerrors.IgnoreUpdateFailedError{Err: werr}
	}
	if cerr != nil {
		return &planerrors.IgnoreUpdateFailedError{Err: cerr}
	}

	if res := c.Git.StageAndCommit(ctx, c.ProjectRoot, []string{ignoreFileName}, ignoreCommitMessage); !res.Ok() {
		return &planerrors.IgnoreUpdateFailedError{Err: &planerrors.GitError{
			Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
		}}
	}
	return nil
}

func (c *Coordinator) verifyCreated(ctx context.Context, g *planmodel.Graph, createdEpicIDs []string, verify *VerifyOptions) error {
	for _, epicID := range createdEpicIDs {
		worktreePath := planconfig.WorktreePath(c.ProjectRoot, epicID)
		output, ok := runVerify(ctx, worktreePath, verify.Command)
		if ok {
			continue
		}
		if verify.Strict {
			c.rollbackCreated(ctx, g, createdEpicIDs)
			c.save(g) // best-effort; the BaselineFailedError below is authoritative
		}
		return &planerrors.BaselineFailedError{EpicID: epicID, Command: verify.Command, Output: output}
	}
	return nil
}

// rollbackCreated removes every worktree this Expand invocation created
// and resets their epics to pending, used only by the --strict verify
// variant.
func (c *Coordinator) rollbackCreated(ctx context.Context, g *planmodel.Graph, epicIDs []string) {
	for _, epicID := range epicIDs {
		worktreePath := planconfig.WorktreePath(c.ProjectRoot, epicID)
		c.Git.Remove(ctx, c.ProjectRoot, worktreePath)
		os.RemoveAll(worktreePath)
		if e := g.EpicByID(epicID); e != nil {
			e.Status = planmodel.StatusPending
			e.Worktree = ""
		}
	}
}
