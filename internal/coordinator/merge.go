package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/MBFrosty/planctl/internal/marker"
	"github.com/MBFrosty/planctl/internal/planconfig"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

// MergeResult reports what Merge actually integrated.
type MergeResult struct {
	TargetBranch string
	Merged       []string
}

// Merge integrates one or more completed epics' branches back to a base
// branch. Called from within a worktree, it infers the
// epic from the local marker and delegates to a base-located
// Coordinator.
func (c *Coordinator) Merge(ctx context.Context, epicIDs []string, baseBranch string) (*MergeResult, error) {
	if marker.Exists(c.ProjectRoot) {
		m, err := marker.Read(c.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("reading marker: %w", err)
		}
		baseRoot, err := c.resolveBaseRoot(ctx)
		if err != nil {
			return nil, err
		}
		base := &Coordinator{ProjectRoot: baseRoot, Git: c.Git, LockOptions: c.LockOptions}
		return base.Merge(ctx, []string{m.Epic}, baseBranch)
	}

	result := &MergeResult{}
	err := c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}

		ids := epicIDs
		if len(ids) == 0 {
			for id := range planmodel.CompletedEpics(g) {
				ids = append(ids, id)
			}
		}

		var missing []string
		var epics []*planmodel.Epic
		for _, id := range ids {
			e := g.EpicByID(id)
			if e == nil {
				missing = append(missing, id)
				continue
			}
			epics = append(epics, e)
		}
		if len(missing) > 0 {
			return &planerrors.NotFoundError{Kind: "epic", IDs: missing}
		}

		target := baseBranch
		if target == "" {
			branch, res := c.Git.CurrentBranch(ctx, c.ProjectRoot)
			if !res.Ok() {
				return &planerrors.CheckoutFailedError{Branch: target, GitError: &planerrors.GitError{
					Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
				}}
			}
			target = branch
		}
		result.TargetBranch = target

		if res := c.Git.Checkout(ctx, c.ProjectRoot, target); !res.Ok() {
			return &planerrors.CheckoutFailedError{Branch: target, GitError: &planerrors.GitError{
				Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
			}}
		}

		for _, e := range epics {
			msg := fmt.Sprintf("feat: integrate %s epic", e.ID)
			if res := c.Git.Merge(ctx, c.ProjectRoot, e.ID, msg); !res.Ok() {
				return &planerrors.MergeFailedError{EpicID: e.ID, GitError: &planerrors.GitError{
					Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode,
				}}
			}
			result.Merged = append(result.Merged, e.ID)
		}
		return nil
	})
	return result, err
}

// resolveBaseRoot locates the base project from a worktree: the git
// worktree list's first path that is not under .worktrees.
func (c *Coordinator) resolveBaseRoot(ctx context.Context) (string, error) {
	paths, res := c.Git.List(ctx, c.ProjectRoot)
	if !res.Ok() {
		return "", &planerrors.GitError{Argv: res.Argv, Stdout: res.Stdout, Stderr: res.Stderr, ExitCode: res.ExitCode}
	}
	for _, p := range paths {
		if !strings.Contains(p, "/"+planconfig.WorktreesDirName+"/") {
			return p, nil
		}
	}
	return "", &planerrors.BaseNotFoundError{Detail: "no worktree path outside .worktrees in git worktree list"}
}
