package gitdriver

import (
	"context"
	"fmt"
	"os"
)

// Fake is an in-memory Driver for coordinator tests, avoiding a real git
// binary — the same injectable-runner shape as the pack's
// raveheart1-autospec CommandRunner.
type Fake struct {
	Worktrees      []string          // paths currently registered, in List order
	Branches       map[string]bool   // branch name -> exists
	Ignored        map[string]bool   // path -> ignored
	CurrentBranchV string
	MergeFails     map[string]bool // epicID -> Merge should fail
	CheckoutFails  bool
	Calls          []string // argv joined, for assertions
}

func NewFake(currentBranch string) *Fake {
	return &Fake{
		Branches:       map[string]bool{},
		Ignored:        map[string]bool{},
		MergeFails:     map[string]bool{},
		CurrentBranchV: currentBranch,
	}
}

func (f *Fake) record(args ...string) { f.Calls = append(f.Calls, fmt.Sprint(args)) }

func (f *Fake) Add(_ context.Context, _, worktreePath, newBranch string) Result {
	f.record("add", worktreePath, newBranch)
	// A real `git worktree add` creates the directory; mirror that so
	// callers that write files into the new worktree (the marker store)
	// work unchanged against this fake.
	if err := os.MkdirAll(worktreePath, 0o755); err != nil {
		return Result{ExitCode: 1, Stderr: err.Error()}
	}
	f.Worktrees = append(f.Worktrees, worktreePath)
	f.Branches[newBranch] = true
	return Result{ExitCode: 0}
}

func (f *Fake) List(_ context.Context, _ string) ([]string, Result) {
	return f.Worktrees, Result{ExitCode: 0}
}

func (f *Fake) Remove(_ context.Context, _, worktreePath string) Result {
	f.record("remove", worktreePath)
	out := f.Worktrees[:0]
	for _, w := range f.Worktrees {
		if w != worktreePath {
			out = append(out, w)
		}
	}
	f.Worktrees = out
	return Result{ExitCode: 0}
}

func (f *Fake) Checkout(_ context.Context, _, branch string) Result {
	f.record("checkout", branch)
	if f.CheckoutFails {
		return Result{ExitCode: 1, Stderr: "checkout failed"}
	}
	f.CurrentBranchV = branch
	return Result{ExitCode: 0}
}

func (f *Fake) Merge(_ context.Context, _, branch, message string) Result {
	f.record("merge", branch, message)
	if f.MergeFails[branch] {
		return Result{ExitCode: 1, Stderr: "merge conflict", Argv: []string{"git", "merge", "--no-ff", branch}}
	}
	return Result{ExitCode: 0}
}

func (f *Fake) CurrentBranch(_ context.Context, _ string) (string, Result) {
	return f.CurrentBranchV, Result{ExitCode: 0}
}

func (f *Fake) CheckIgnored(_ context.Context, _, path string) (bool, Result) {
	return f.Ignored[path], Result{ExitCode: 0}
}

func (f *Fake) StageAndCommit(_ context.Context, _ string, paths []string, message string) Result {
	f.record("commit", fmt.Sprint(paths), message)
	return Result{ExitCode: 0}
}

var _ Driver = (*Fake)(nil)
