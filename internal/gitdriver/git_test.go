package gitdriver

import (
	"reflect"
	"testing"
)

func TestParseWorktreeList(t *testing.T) {
	porcelain := "worktree /repo\nHEAD abc123\nbranch refs/heads/main\n\n" +
		"worktree /repo/.worktrees/A\nHEAD def456\nbranch refs/heads/A\n\n"

	got := ParseWorktreeList(porcelain)
	want := []string{"/repo", "/repo/.worktrees/A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseWorktreeList = %v, want %v", got, want)
	}
}

func TestParseWorktreeListEmpty(t *testing.T) {
	if got := ParseWorktreeList(""); len(got) != 0 {
		t.Errorf("expected no worktrees, got %v", got)
	}
}
