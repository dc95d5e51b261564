package main

import (
	"errors"
	"testing"

	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planlock"
	"github.com/MBFrosty/planctl/internal/planstore"
)

func TestExitCodeMapsTypedErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &planerrors.NotFoundError{Kind: "task", IDs: []string{"x"}}, 4},
		{"schema", &planstore.SchemaErrorList{Violations: nil}, 5},
		{"parse", &planstore.ParseError{Err: errors.New("bad yaml")}, 5},
		{"lock timeout", &planlock.TimeoutError{}, 6},
		{"git error", &planerrors.GitError{Argv: []string{"git", "status"}, ExitCode: 1}, 7},
		{"checkout failed", &planerrors.CheckoutFailedError{Branch: "b", GitError: &planerrors.GitError{}}, 7},
		{"merge failed", &planerrors.MergeFailedError{EpicID: "e", GitError: &planerrors.GitError{}}, 7},
		{"remove failed", &planerrors.RemoveFailedError{EpicID: "e", GitError: &planerrors.GitError{}}, 7},
		{"ignore update failed", &planerrors.IgnoreUpdateFailedError{Err: errors.New("x")}, 8},
		{"baseline failed", &planerrors.BaselineFailedError{EpicID: "e"}, 9},
		{"not a worktree", &planerrors.NotAWorktreeError{ProjectRoot: "/tmp"}, 10},
		{"base not found", &planerrors.BaseNotFoundError{Detail: "x"}, 10},
		{"direction mismatch", &planerrors.DirectionMismatchError{Direction: "scan", Location: "worktree"}, 2},
		{"invalid input", &planerrors.InvalidInputError{Detail: "x"}, 2},
		{"unknown error", errors.New("boom"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestExitMessageReturnsErrorText(t *testing.T) {
	err := errors.New("something failed")
	if got := exitMessage(err); got != "something failed" {
		t.Errorf("exitMessage = %q", got)
	}
}

func TestWorktreeArgNonWorktreeReturnsEmpty(t *testing.T) {
	if got := worktreeArg(t.TempDir()); got != "" {
		t.Errorf("worktreeArg on a plain directory = %q, want empty", got)
	}
}
