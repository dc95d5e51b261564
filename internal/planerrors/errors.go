// Package planerrors defines the typed error taxonomy the coordinator and
// command surface use to branch on failure kind without parsing error
// text.
package planerrors

import "fmt"

// NotFoundError covers a missing task id or an unresolvable epic id list.
type NotFoundError struct {
	Kind string // "task", "epic", etc.
	IDs  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Kind, e.IDs)
}

// GitError is the catch-all for an unexpected nonzero git exit.
type GitError struct {
	Argv     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %v failed (exit %d): %s", e.Argv, e.ExitCode, combinedOutput(e.Stdout, e.Stderr))
}

func combinedOutput(stdout, stderr string) string {
	if stderr == "" {
		return stdout
	}
	if stdout == "" {
		return stderr
	}
	return stdout + "\n" + stderr
}

// CheckoutFailedError specializes GitError for a failed branch checkout.
type CheckoutFailedError struct {
	Branch string
	*GitError
}

func (e *CheckoutFailedError) Error() string {
	return fmt.Sprintf("checkout %q failed: %s", e.Branch, e.GitError.Error())
}
func (e *CheckoutFailedError) Unwrap() error { return e.GitError }

// MergeFailedError specializes GitError for a failed merge, naming the
// epic whose branch could not be integrated.
type MergeFailedError struct {
	EpicID string
	*GitError
}

func (e *MergeFailedError) Error() string {
	return fmt.Sprintf("merge of epic %q failed: %s", e.EpicID, e.GitError.Error())
}
func (e *MergeFailedError) Unwrap() error { return e.GitError }

// RemoveFailedError specializes GitError for a failed worktree removal.
type RemoveFailedError struct {
	EpicID string
	*GitError
}

func (e *RemoveFailedError) Error() string {
	return fmt.Sprintf("removing worktree for epic %q failed: %s", e.EpicID, e.GitError.Error())
}
func (e *RemoveFailedError) Unwrap() error { return e.GitError }

// IgnoreUpdateFailedError means the project ignore file could not be
// staged or committed during Expand.
type IgnoreUpdateFailedError struct {
	Err error
}

func (e *IgnoreUpdateFailedError) Error() string {
	return fmt.Sprintf("updating ignore file failed: %v", e.Err)
}
func (e *IgnoreUpdateFailedError) Unwrap() error { return e.Err }

// BaselineFailedError means a post-expand verification command failed.
type BaselineFailedError struct {
	EpicID  string
	Command []string
	Output  string
}

func (e *BaselineFailedError) Error() string {
	return fmt.Sprintf("baseline verification failed for epic %q (command %v): %s", e.EpicID, e.Command, e.Output)
}

// NotAWorktreeError means a worktree-only operation was invoked from a
// project root with no marker file.
type NotAWorktreeError struct {
	ProjectRoot string
}

func (e *NotAWorktreeError) Error() string {
	return fmt.Sprintf("%s is not a worktree (no .epic-marker found)", e.ProjectRoot)
}

// BaseNotFoundError means the base project root could not be resolved
// from the worktree's git worktree list.
type BaseNotFoundError struct {
	Detail string
}

func (e *BaseNotFoundError) Error() string {
	return fmt.Sprintf("base project not found: %s", e.Detail)
}

// DirectionMismatchError means an explicit --direction flag is not
// permitted from the caller's location (e.g. "scan" from a worktree).
type DirectionMismatchError struct {
	Direction string
	Location  string // "worktree" or "base"
}

func (e *DirectionMismatchError) Error() string {
	return fmt.Sprintf("direction %q is not permitted from a %s", e.Direction, e.Location)
}

// InvalidInputError covers bad flags or malformed ids at the command
// surface, before any lock or git interaction is attempted.
type InvalidInputError struct {
	Detail string
}

func (e *InvalidInputError) Error() string { return fmt.Sprintf("invalid input: %s", e.Detail) }
