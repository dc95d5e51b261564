// Package gitdriver is the narrow contract around the git operations the
// coordinator needs: worktree add/list/remove, checkout, merge, the
// branch name of HEAD, and an ignore check. Every operation returns
// (stdout, stderr, exitCode) and never panics or errors on a nonzero git
// exit — the caller decides what a nonzero exit means. Invocations always
// use the argv form of os/exec (exec.Command with an explicit argument
// slice, never a shell string); Driver is an interface so tests can inject
// a fake instead of shelling out.
package gitdriver

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Result is the outcome of a single git invocation.
type Result struct {
	Argv     []string
	Stdout   string
	Stderr   string
	ExitCode int
}

func (r Result) Ok() bool { return r.ExitCode == 0 }

// Driver is the contract the coordinator depends on, so tests can inject a
// fake without shelling out to a real git binary.
type Driver interface {
	Add(ctx context.Context, repoDir, worktreePath, newBranch string) Result
	List(ctx context.Context, repoDir string) ([]string, Result)
	Remove(ctx context.Context, repoDir, worktreePath string) Result
	Checkout(ctx context.Context, repoDir, branch string) Result
	Merge(ctx context.Context, repoDir, branch, message string) Result
	CurrentBranch(ctx context.Context, repoDir string) (string, Result)
	CheckIgnored(ctx context.Context, repoDir, path string) (bool, Result)
	StageAndCommit(ctx context.Context, repoDir string, paths []string, message string) Result
}

// ExecDriver is the real Driver, implemented by shelling out to the git
// binary on PATH via argv-only exec.Command invocations.
type ExecDriver struct {
	// GitPath is the git binary to invoke; defaults to "git" (resolved via
	// PATH by exec.Command) when empty.
	GitPath string
}

func (d *ExecDriver) bin() string {
	if d.GitPath == "" {
		return "git"
	}
	return d.GitPath
}

func (d *ExecDriver) run(ctx context.Context, dir string, args ...string) Result {
	cmd := exec.CommandContext(ctx, d.bin(), args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			stderr.WriteString(err.Error())
		}
	}
	return Result{
		Argv:     append([]string{d.bin()}, args...),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// Add creates a worktree at worktreePath on a new branch from HEAD.
func (d *ExecDriver) Add(ctx context.Context, repoDir, worktreePath, newBranch string) Result {
	return d.run(ctx, repoDir, "worktree", "add", "-b", newBranch, worktreePath)
}

// List returns the ordered worktree paths, parsed from the porcelain
// listing by extracting each line starting with the literal "worktree "
// prefix.
func (d *ExecDriver) List(ctx context.Context, repoDir string) ([]string, Result) {
	res := d.run(ctx, repoDir, "worktree", "list", "--porcelain")
	if !res.Ok() {
		return nil, res
	}
	return ParseWorktreeList(res.Stdout), res
}

// ParseWorktreeList extracts worktree paths from `git worktree list
// --porcelain` output.
func ParseWorktreeList(porcelain string) []string {
	var paths []string
	scanner := bufio.NewScanner(strings.NewReader(porcelain))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "worktree ") {
			paths = append(paths, strings.TrimPrefix(line, "worktree "))
		}
	}
	return paths
}

// Remove removes a worktree registration.
func (d *ExecDriver) Remove(ctx context.Context, repoDir, worktreePath string) Result {
	return d.run(ctx, repoDir, "worktree", "remove", worktreePath)
}

// Checkout switches the repo at repoDir onto branch.
func (d *ExecDriver) Checkout(ctx context.Context, repoDir, branch string) Result {
	return d.run(ctx, repoDir, "checkout", branch)
}

// Merge merges branch into the current branch using --no-ff, to preserve
// history even when a fast-forward would otherwise be possible.
func (d *ExecDriver) Merge(ctx context.Context, repoDir, branch, message string) Result {
	return d.run(ctx, repoDir, "merge", "--no-ff", branch, "-m", message)
}

// CurrentBranch resolves HEAD to a branch name; returns ("", res) with a
// non-ok Result if HEAD is detached.
func (d *ExecDriver) CurrentBranch(ctx context.Context, repoDir string) (string, Result) {
	res := d.run(ctx, repoDir, "rev-parse", "--abbrev-ref", "HEAD")
	name := strings.TrimSpace(res.Stdout)
	if !res.Ok() || name == "" || name == "HEAD" {
		if res.Ok() {
			res.ExitCode = 1
			res.Stderr = "HEAD is detached"
		}
		return "", res
	}
	return name, res
}

// CheckIgnored reports whether path is ignored by the repo at repoDir.
func (d *ExecDriver) CheckIgnored(ctx context.Context, repoDir, path string) (bool, Result) {
	res := d.run(ctx, repoDir, "check-ignore", "-q", path)
	// check-ignore exits 0 when ignored, 1 when not ignored, >1 on error.
	return res.ExitCode == 0, res
}

// StageAndCommit stages paths and commits them with message.
func (d *ExecDriver) StageAndCommit(ctx context.Context, repoDir string, paths []string, message string) Result {
	addArgs := append([]string{"add"}, paths...)
	if res := d.run(ctx, repoDir, addArgs...); !res.Ok() {
		return res
	}
	return d.run(ctx, repoDir, "commit", "-m", message)
}
