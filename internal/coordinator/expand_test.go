package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MBFrosty/planctl/internal/marker"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

func TestExpandCreatesWorktreeForReadyEpic(t *testing.T) {
	c, fake := newTestCoordinator(t, readyGraph())

	result, err := c.Expand(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Created) != 1 || result.Created[0] != "A" {
		t.Fatalf("expected epic A created, got %v", result.Created)
	}

	g, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	epic := g.EpicByID("A")
	if epic.Status != planmodel.StatusInProgress {
		t.Fatalf("expected epic A in_progress, got %s", epic.Status)
	}
	if epic.Worktree == "" {
		t.Fatal("expected epic A worktree path to be set")
	}

	worktreePath := filepath.Join(c.ProjectRoot, epic.Worktree)
	if !marker.Exists(worktreePath) {
		t.Fatal("expected marker to be written into the new worktree")
	}
	m, err := marker.Read(worktreePath)
	if err != nil {
		t.Fatal(err)
	}
	if m.Epic != "A" || m.Local.Status != string(planmodel.StatusInProgress) {
		t.Fatalf("unexpected marker: %+v", m)
	}

	ignorePath := filepath.Join(c.ProjectRoot, ignoreFileName)
	data, err := os.ReadFile(ignorePath)
	if err != nil {
		t.Fatalf("expected ignore file to be written: %v", err)
	}
	if !strings.Contains(string(data), ".worktrees") {
		t.Fatalf("expected ignore file to contain .worktrees, got %q", data)
	}
	if len(fake.Calls) == 0 {
		t.Fatal("expected at least one git call to have been recorded")
	}
}

func TestExpandVerifyFailureReportsBaselineFailed(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())

	_, err := c.Expand(context.Background(), &VerifyOptions{Command: []string{"false"}})
	var bf *planerrors.BaselineFailedError
	if !asBaselineFailed(err, &bf) {
		t.Fatalf("expected BaselineFailedError, got %v", err)
	}
	if bf.EpicID != "A" {
		t.Fatalf("expected epic A named, got %q", bf.EpicID)
	}

	// Non-strict: the worktree is left in place for inspection.
	g, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	epic := g.EpicByID("A")
	if epic.Status != planmodel.StatusInProgress || epic.Worktree == "" {
		t.Fatalf("expected epic A left in_progress with its worktree, got %+v", epic)
	}
}

func TestExpandStrictVerifyFailureRollsBack(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())

	_, err := c.Expand(context.Background(), &VerifyOptions{Command: []string{"false"}, Strict: true})
	if err == nil {
		t.Fatal("expected an error")
	}

	g, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	epic := g.EpicByID("A")
	if epic.Status != planmodel.StatusPending || epic.Worktree != "" {
		t.Fatalf("expected epic A rolled back to pending with no worktree, got %+v", epic)
	}
}

func asBaselineFailed(err error, target **planerrors.BaselineFailedError) bool {
	bf, ok := err.(*planerrors.BaselineFailedError)
	if !ok {
		return false
	}
	*target = bf
	return true
}
