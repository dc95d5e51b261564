package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MBFrosty/planctl/internal/planerrors"
)

func TestCleanupRemovesWorktreeOfCompletedEpic(t *testing.T) {
	g := completedGraph()
	g.Epics[0].Worktree = ".worktrees/A"
	c, _ := newTestCoordinator(t, g)

	worktreePath := filepath.Join(c.ProjectRoot, ".worktrees", "A")
	if err := os.MkdirAll(worktreePath, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := c.Cleanup(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Removed) != 1 {
		t.Fatalf("expected one path removed, got %v", result.Removed)
	}
	if _, statErr := os.Stat(worktreePath); !os.IsNotExist(statErr) {
		t.Fatal("expected worktree directory to be gone")
	}

	got, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	if got.EpicByID("A").Worktree != "" {
		t.Fatal("expected worktree field cleared")
	}
}

func TestCleanupUnknownEpicIsNotFound(t *testing.T) {
	c, _ := newTestCoordinator(t, completedGraph())
	_, err := c.Cleanup(context.Background(), []string{"missing"})
	var nf *planerrors.NotFoundError
	if !asNotFound(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCleanupSkipsEpicsWithNoWorktree(t *testing.T) {
	c, _ := newTestCoordinator(t, completedGraph())
	result, err := c.Cleanup(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", result.Removed)
	}
}
