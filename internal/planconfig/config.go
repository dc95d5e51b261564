// Package planconfig resolves the project root a command should operate
// against and holds the coordinator's path-layout constants: derive a
// root from a well-known file's location, with an explicit override flag
// taking precedence.
package planconfig

import (
	"os"
	"path/filepath"

	"github.com/MBFrosty/planctl/internal/marker"
)

const (
	// WorktreesDirName is the base-relative directory holding every
	// per-epic worktree.
	WorktreesDirName = ".worktrees"

	// GoalFileName optionally supplies reboot's project_goal string, kept
	// externally configured rather than hardcoded.
	GoalFileName = ".plan-goal"
)

// ResolveProjectRoot determines the project root a command should operate
// against. If override is non-empty it wins outright. Otherwise it walks
// up from the current working directory looking for either a marker file
// (meaning cwd is inside a worktree) or a plan.yaml (meaning cwd is the
// base) — whichever is found first going upward from cwd.
func ResolveProjectRoot(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findProjectRoot(cwd)
}

func findProjectRoot(start string) (string, error) {
	dir := start
	for {
		if marker.Exists(dir) {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "plan.yaml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil // nothing found; caller's Load will report NotFound
		}
		dir = parent
	}
}

// IsWorktree reports whether projectRoot is a worktree (marker present).
func IsWorktree(projectRoot string) bool {
	return marker.Exists(projectRoot)
}

// WorktreesDir returns the base-relative directory holding every worktree.
func WorktreesDir(baseRoot string) string {
	return filepath.Join(baseRoot, WorktreesDirName)
}

// WorktreePath returns the path a given epic's worktree would live at.
func WorktreePath(baseRoot, epicID string) string {
	return filepath.Join(WorktreesDir(baseRoot), epicID)
}

// ReadGoal reads the optional project-goal file; returns "" if absent.
func ReadGoal(projectRoot string) string {
	data, err := os.ReadFile(filepath.Join(projectRoot, GoalFileName))
	if err != nil {
		return ""
	}
	return string(data)
}
